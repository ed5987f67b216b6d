package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// NumTokens estimates the token count of text with the cl100k encoding.
func NumTokens(text string) (int, error) {
	tkm, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
