package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ArticleID derives the store key of an article: the hex MD5 of its source URL,
// or of its title when the URL is empty. The "#" placeholder is hashed as is so
// that ids stay one-to-one with the unique sourceUrl index.
func ArticleID(sourceURL, title string) string {
	key := sourceURL
	if key == "" {
		key = title
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// PublisherLogo builds the icon URL from the first letter of the publisher
// name, "n" when the name is empty.
func PublisherLogo(publisherName string) string {
	letter := "n"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(publisherName)); r != utf8.RuneError {
		letter = string(unicode.ToLower(r))
	}
	return fmt.Sprintf(publisherLogoTemplate, letter)
}
