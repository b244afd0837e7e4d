package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
)

func TestLoadRouting_ValidConfig(t *testing.T) {
	reader := strings.NewReader(`
routes:
  - issn: "2053-9517"
    variant: highwire
  - issn: "1932-6203"
    variant: plos
`)

	cfg, err := LoadRouting(reader)

	require.NoError(t, err)
	require.Len(t, cfg.Routes, 2)
	assert.Equal(t, "2053-9517", cfg.Routes[0].ISSN)
	assert.Equal(t, VariantHighwire, cfg.Routes[0].Variant)
}

func TestLoadRouting_UnknownVariantFails(t *testing.T) {
	reader := strings.NewReader(`
routes:
  - issn: "2053-9517"
    variant: wiley
`)

	_, err := LoadRouting(reader)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extractor variant")
}

func TestLoadRouting_MissingISSNFails(t *testing.T) {
	reader := strings.NewReader(`
routes:
  - variant: highwire
`)

	_, err := LoadRouting(reader)

	require.Error(t, err)
}

func TestRegistry_For_RoutesByISSN(t *testing.T) {
	cfg := &RoutingConfig{Routes: []Route{
		{ISSN: "2053-9517", Variant: VariantHighwire},
		{ISSN: "1932-6203", Variant: VariantPLOS},
	}}
	reg := NewRegistryFromRouting(cfg, ClientOptions{})

	hw, err := reg.For("2053-9517")
	require.NoError(t, err)
	assert.Equal(t, "highwire", hw.Name())

	plos, err := reg.For("1932-6203")
	require.NoError(t, err)
	assert.Equal(t, "plos", plos.Name())
}

func TestRegistry_For_UnregisteredKeyIsTypedError(t *testing.T) {
	reg := NewDefaultRegistry(ClientOptions{})

	_, err := reg.For("0000-0000")

	require.Error(t, err)
	var uce *apperr.UnsupportedContentError
	require.ErrorAs(t, err, &uce)
	assert.Equal(t, "0000-0000", uce.ISSN)
}

func TestDefaultRegistry_KnownRoutes(t *testing.T) {
	reg := NewDefaultRegistry(ClientOptions{})

	for _, issn := range []string{"2053-9517", "2044-6055"} {
		ex, err := reg.For(issn)
		require.NoError(t, err)
		assert.Equal(t, "highwire", ex.Name())
	}

	ex, err := reg.For("1932-6203")
	require.NoError(t, err)
	assert.Equal(t, "plos", ex.Name())
}

func TestPLOS_Extract_NotImplemented(t *testing.T) {
	plos := NewPLOS()

	_, err := plos.Extract(context.Background(), "https://journals.plos.org/plosone/article?id=10.1371/x")

	require.Error(t, err)
	var nie *apperr.NotImplementedError
	require.ErrorAs(t, err, &nie)
}
