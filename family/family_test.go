package family

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTables(t *testing.T) {
	tables := Default()

	assert.Len(t, tables.SCP, 100)
	assert.Len(t, tables.Buckhorn, 11)
	assert.Len(t, tables.RDX, 23)
}

func TestMembership(t *testing.T) {
	tables := Default()

	checks := []struct {
		name  string
		list  []string
		is    func(string) bool
		other []func(string) bool
	}{
		{"scp", tables.SCP, IsSCPDrive, []func(string) bool{IsBuckhornDrive, IsRDXDrive}},
		{"buckhorn", tables.Buckhorn, IsBuckhornDrive, []func(string) bool{IsSCPDrive, IsRDXDrive}},
		{"rdx", tables.RDX, IsRDXDrive, []func(string) bool{IsSCPDrive, IsBuckhornDrive}},
	}

	for _, c := range checks {
		for _, tla := range c.list {
			assert.True(t, c.is(tla), "%s %s", c.name, tla)

			for _, other := range c.other {
				assert.False(t, other(tla), "%s %s matched another family", c.name, tla)
			}
		}
	}
}

func TestNoMatch(t *testing.T) {
	for _, tla := range []string{"", "0", "00505011", "000000000", "999999999", "ABCDEFGHI"} {
		assert.False(t, IsSCPDrive(tla), tla)
		assert.False(t, IsBuckhornDrive(tla), tla)
		assert.False(t, IsRDXDrive(tla), tla)
		assert.Equal(t, Unknown, Default().Lookup(tla), tla)
	}
}

func TestPrefixCompare(t *testing.T) {
	assert.True(t, IsBuckhornDrive("005050112"))
	assert.True(t, IsBuckhornDrive("005050112PWR"))
	assert.False(t, IsBuckhornDrive("00505011"))
	assert.False(t, IsBuckhornDrive(" 005050112"))
}

func TestLoad(t *testing.T) {
	tables, err := Load(strings.NewReader("scp: [\"123456789\"]\nrdx: [\"987654321\"]\n"))
	assert.NoError(t, err)
	assert.True(t, tables.IsSCP("123456789XYZ"))
	assert.True(t, tables.IsRDX("987654321"))
	assert.False(t, tables.IsBuckhorn("005050112"))
}

func TestLoadBad(t *testing.T) {
	_, err := Load(strings.NewReader("scp: [\"1234\"]\n"))
	assert.Error(t, err)

	_, err = Load(bytes.NewReader([]byte("scp: {")))
	assert.Error(t, err)
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(Default())

	assert.Equal(t, Buckhorn, c.Family("005050112ABCD"))
	assert.Equal(t, Buckhorn, c.Family("005050112"))
	assert.Equal(t, SCP, c.Family(Default().SCP[0]))
	assert.Equal(t, RDX, c.Family(Default().RDX[0]))
	assert.Equal(t, Unknown, c.Family("short"))
	assert.Equal(t, Unknown, c.Family(""))
	assert.Equal(t, "BUCKHORN", Buckhorn.String())
}
