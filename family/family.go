// Package family maps drive TLA numbers to the vendor family that decides how
// raw write counters are interpreted.
package family

import (
	"bytes"
	_ "embed" // tla.yaml
	"io"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PrefixLen is the number of TLA characters compared.
const PrefixLen = 9

// Family - a drive vendor family.
type Family int

const (
	// Unknown - no table lists the TLA.
	Unknown Family = iota

	// SCP - Hitachi SCP flash drives.
	SCP

	// Buckhorn - Micron Buckhorn flash drives.
	Buckhorn

	// RDX - Samsung RDX flash drives.
	RDX
)

func (f Family) String() string {
	return []string{"UNKNOWN", "SCP", "BUCKHORN", "RDX"}[f]
}

//go:embed tla.yaml
var defaultTables []byte

// Tables - the TLA prefix lists of each family.
type Tables struct {
	SCP      []string `yaml:"scp"`
	Buckhorn []string `yaml:"buckhorn"`
	RDX      []string `yaml:"rdx"`
}

// Load decodes Tables from YAML. Every entry must be exactly PrefixLen
// characters long.
func Load(r io.Reader) (Tables, error) {
	t := Tables{}

	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return t, errors.Wrap(err, "decoding tla tables")
	}

	for name, list := range map[string][]string{"scp": t.SCP, "buckhorn": t.Buckhorn, "rdx": t.RDX} {
		for _, tla := range list {
			if len(tla) != PrefixLen {
				return t, errors.Errorf("%s table: tla %q is not %d characters", name, tla, PrefixLen)
			}
		}
	}

	return t, nil
}

// Default returns the embedded tables.
func Default() Tables {
	t, err := Load(bytes.NewReader(defaultTables))
	if err != nil {
		panic(err)
	}

	return t
}

var defaults = Default()

// IsSCP reports whether tla belongs to a Hitachi SCP drive.
func (t Tables) IsSCP(tla string) bool {
	return match(t.SCP, tla)
}

// IsBuckhorn reports whether tla belongs to a Micron Buckhorn drive.
func (t Tables) IsBuckhorn(tla string) bool {
	return match(t.Buckhorn, tla)
}

// IsRDX reports whether tla belongs to a Samsung RDX drive.
func (t Tables) IsRDX(tla string) bool {
	return match(t.RDX, tla)
}

// Lookup returns the family of tla, checked in SCP, Buckhorn, RDX order.
func (t Tables) Lookup(tla string) Family {
	switch {
	case t.IsSCP(tla):
		return SCP
	case t.IsBuckhorn(tla):
		return Buckhorn
	case t.IsRDX(tla):
		return RDX
	}

	return Unknown
}

func match(table []string, tla string) bool {
	if len(tla) < PrefixLen {
		return false
	}

	prefix := tla[:PrefixLen]

	for _, entry := range table {
		if entry == prefix {
			return true
		}
	}

	return false
}

// IsSCPDrive - IsSCP against the embedded tables.
func IsSCPDrive(tla string) bool {
	return defaults.IsSCP(tla)
}

// IsBuckhornDrive - IsBuckhorn against the embedded tables.
func IsBuckhornDrive(tla string) bool {
	return defaults.IsBuckhorn(tla)
}

// IsRDXDrive - IsRDX against the embedded tables.
func IsRDXDrive(tla string) bool {
	return defaults.IsRDX(tla)
}

// Classifier - Tables.Lookup with results cached per TLA prefix. A log holds
// many records for the same few drives.
type Classifier struct {
	tables Tables
	cache  *cache.Cache
}

// NewClassifier returns a Classifier over t.
func NewClassifier(t Tables) *Classifier {
	const longTime = 30 * time.Minute

	return &Classifier{
		tables: t,
		cache:  cache.New(longTime, longTime),
	}
}

// Tables returns the tables the classifier was built from.
func (c *Classifier) Tables() Tables {
	return c.tables
}

// Family returns the family of tla.
func (c *Classifier) Family(tla string) Family {
	key := tla
	if len(key) > PrefixLen {
		key = key[:PrefixLen]
	}

	if cached, found := c.cache.Get(key); found {
		return cached.(Family)
	}

	f := c.tables.Lookup(tla)
	c.cache.Set(key, f, cache.DefaultExpiration)

	return f
}
