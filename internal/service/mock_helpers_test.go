package service

import (
	"strings"

	"github.com/stretchr/testify/mock"
)

type mockArgs = mock.Arguments

func sixDigitsMatcher() interface{} {
	return mock.MatchedBy(func(code string) bool { return sixDigits.MatchString(code) })
}

func idCardKeyMatcher(canonical, ext string) interface{} {
	return mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "id-cards/"+canonical+"-") && strings.HasSuffix(key, ext)
	})
}
