package services

import (
	"context"

	"news-hub/dto"
	"news-hub/repositories"
)

// ArticleService maps stored articles to DTOs for the read API.
type ArticleService struct {
	store repositories.ArticleStore
}

func NewArticleService(store repositories.ArticleStore) *ArticleService {
	return &ArticleService{store: store}
}

type ListArticlesInput struct {
	Category string
	Limit    int
	Page     int
}

func (s *ArticleService) List(ctx context.Context, in ListArticlesInput) (dto.ArticleListDTO, error) {
	opt := repositories.ListArticlesOptions{Category: in.Category, Limit: in.Limit, Page: in.Page}.Normalize()
	items, total, err := s.store.List(ctx, opt)
	if err != nil {
		return dto.ArticleListDTO{}, err
	}
	out := dto.ArticleListDTO{
		Articles: make([]dto.ArticleDTO, 0, len(items)),
		Total:    total,
		Page:     opt.Page,
		Limit:    opt.Limit,
	}
	for _, a := range items {
		out.Articles = append(out.Articles, dto.NewArticleDTO(a))
	}
	return out, nil
}

// Get returns repositories.ErrNotFound for an unknown id.
func (s *ArticleService) Get(ctx context.Context, id string) (*dto.ArticleDTO, error) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := dto.NewArticleDTO(*a)
	return &d, nil
}
