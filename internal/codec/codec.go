// Package codec renders sites and run reports in the CLI output formats
package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"labsync/internal/domain"
)

// Exporter writes a value in one output format
type Exporter interface {
	Export(v any, w io.Writer) error
	Format() string
}

var exporters = map[string]func() Exporter{
	"json":              func() Exporter { return NewJSONCodec() },
	"yaml":              func() Exporter { return NewYAMLCodec() },
	"ansible-inventory": func() Exporter { return NewAnsibleCodec() },
}

// New returns the exporter for a format name
func New(format string) (Exporter, error) {
	f := strings.ToLower(format)
	if f == "yml" {
		f = "yaml"
	}
	mk, ok := exporters[f]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return mk(), nil
}

// Formats lists the supported format names
func Formats() []string {
	out := make([]string, 0, len(exporters))
	for name := range exporters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// siteDocument is the serialized form of a site with its devices
type siteDocument struct {
	ID          *int             `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string           `json:"name" yaml:"name"`
	Slug        string           `json:"slug" yaml:"slug"`
	Status      domain.Status    `json:"status" yaml:"status"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Tenant      *domain.Ref      `json:"tenant,omitempty" yaml:"tenant,omitempty"`
	Devices     []deviceDocument `json:"devices" yaml:"devices"`
}

type deviceDocument struct {
	domain.Device `yaml:",inline"`
	Ifaces        []*domain.Interface `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

// document converts entities with unexported relationships into
// serializable documents and passes anything else through
func document(v any) any {
	site, ok := v.(*domain.Site)
	if !ok || site == nil {
		return v
	}

	doc := siteDocument{
		ID:          site.ID,
		Name:        site.Name,
		Slug:        site.Slug,
		Status:      site.Status,
		Description: site.Description,
		Tenant:      site.Tenant,
		Devices:     make([]deviceDocument, 0, site.Len()),
	}
	for _, d := range site.Devices() {
		doc.Devices = append(doc.Devices, deviceDocument{Device: *d, Ifaces: d.Interfaces()})
	}
	return doc
}
