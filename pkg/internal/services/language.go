package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"github.com/spf13/viper"
)

var (
	detector     lingua.LanguageDetector
	detectorOnce sync.Once
)

// DetectLanguage returns the lowercase ISO 639-1 code of text, or an empty string when unsure or disabled.
func DetectLanguage(text string) string {
	if !viper.GetBool("posts.detect_language") || strings.TrimSpace(text) == "" {
		return ""
	}

	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithLowAccuracyMode().
			Build()
	})

	if lang, ok := detector.DetectLanguageOf(text); ok {
		return strings.ToLower(lang.IsoCode639_1().String())
	}
	return ""
}
