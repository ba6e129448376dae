package dto

// ErrorResponseDTO는 공통 에러 응답 형식이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"article not found"`
}

// MessageResponseDTO는 단순 메시지 응답 형식이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"ok"`
}

// HealthDTO는 /api/health 응답이다. 의존 서비스별 상태는 checks 에 담는다.
type HealthDTO struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}
