package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyKakaoSeeMorePadding(t *testing.T) {
	out := ApplyKakaoSeeMorePadding("body", " Header ")

	assert.True(t, strings.HasPrefix(out, "Header"+KakaoZeroWidthSpace))
	assert.True(t, strings.HasSuffix(out, "\nbody"))
	assert.Equal(t, KakaoSeeMorePadding, strings.Count(out, KakaoZeroWidthSpace))
}

func TestApplyKakaoSeeMorePadding_KeepsLeadingNewline(t *testing.T) {
	out := ApplyKakaoSeeMorePadding("\nbody", "")

	assert.True(t, strings.HasSuffix(out, KakaoZeroWidthSpace+"\nbody"))
}

func TestApplyKakaoSeeMorePadding_BlankText(t *testing.T) {
	assert.Equal(t, "  ", ApplyKakaoSeeMorePadding("  ", "Header"))
}
