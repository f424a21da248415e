package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

// SentimentKey addresses a cached remote classification of text by model.
func SentimentKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("sentiment:%s:%s", model, hex.EncodeToString(sum[:]))
}
