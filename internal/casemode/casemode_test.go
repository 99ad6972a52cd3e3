package casemode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMode_Flags(t *testing.T) {
	tests := []struct {
		name             string
		insensitiveFS    bool
		insensitiveDB    bool
		insensitive      bool
		needSQLLowering  bool
		needsEntryDedup  bool
		needsRecordDedup bool
	}{
		{
			name: "sensitive fs, sensitive db",
		},
		{
			name:            "sensitive fs, insensitive db",
			insensitiveDB:   true,
			insensitive:     true,
			needsEntryDedup: true,
		},
		{
			name:             "insensitive fs, sensitive db",
			insensitiveFS:    true,
			insensitive:      true,
			needSQLLowering:  true,
			needsRecordDedup: true,
		},
		{
			name:          "insensitive fs, insensitive db",
			insensitiveFS: true,
			insensitiveDB: true,
			insensitive:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.insensitiveFS, tt.insensitiveDB)
			assert.Equal(t, tt.insensitiveFS, m.InsensitiveFS())
			assert.Equal(t, tt.insensitiveDB, m.InsensitiveDB())
			assert.Equal(t, tt.insensitive, m.Insensitive())
			assert.Equal(t, tt.needSQLLowering, m.NeedSQLLowering())
			assert.Equal(t, tt.needsEntryDedup, m.NeedsEntryDedup())
			assert.Equal(t, tt.needsRecordDedup, m.NeedsRecordDedup())
		})
	}
}

func TestMode_Key(t *testing.T) {
	sensitive := New(false, false)
	assert.Equal(t, "AbC", sensitive.Key("AbC"))

	insensitive := New(true, false)
	assert.Equal(t, "abc", insensitive.Key("AbC"))
}

func TestMode_Equal(t *testing.T) {
	sensitive := New(false, false)
	assert.True(t, sensitive.Equal("AA", "AA"))
	assert.False(t, sensitive.Equal("AA", "aa"))

	insensitive := New(false, true)
	assert.True(t, insensitive.Equal("AA", "aa"))
	assert.False(t, insensitive.Equal("AA", "ab"))
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "case-sensitive filesystem, case-sensitive database", New(false, false).String())
	assert.Equal(t, "case-insensitive filesystem, case-sensitive database", New(true, false).String())
	assert.Equal(t, "case-sensitive filesystem, case-insensitive database", New(false, true).String())
}
