package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMemberCode(t *testing.T) {
	assert.Equal(t, "MX1001", FormatMemberCode("mx", 1001))
	assert.Equal(t, "ABC7", FormatMemberCode("ABC", 7))
}

func TestNormalizeMemberCode(t *testing.T) {
	assert.Equal(t, "MX1001", NormalizeMemberCode("  mx1001 "))
	assert.Equal(t, "", NormalizeMemberCode("   "))
}
