package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDateTimeToUTC(t *testing.T) {
	t.Run("compact timestamp with offset", func(t *testing.T) {
		assert.Equal(t, "2024-03-10T12:30:00Z", ConvertDateTimeToUTC("20240310143000+0200"))
	})

	t.Run("compact timestamp without offset is treated as UTC", func(t *testing.T) {
		assert.Equal(t, "2024-03-10T14:30:00Z", ConvertDateTimeToUTC("20240310143000"))
	})

	t.Run("date only", func(t *testing.T) {
		assert.Equal(t, "2024-03-10T00:00:00Z", ConvertDateTimeToUTC("20240310"))
	})

	t.Run("unparseable input is returned verbatim", func(t *testing.T) {
		assert.Equal(t, "not-a-time", ConvertDateTimeToUTC("not-a-time"))
	})
}

func TestFormatDateOnly(t *testing.T) {
	assert.Equal(t, "1990-06-15", FormatDateOnly("19900615"))
	assert.Equal(t, "1990-06-15", FormatDateOnly("1990-06-15"))
	assert.Equal(t, "garbage", FormatDateOnly("garbage"))
}
