package pandora

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPartner is the partner profile used when none is configured.
	DefaultPartner = "android"

	defaultPartnerVersion = "5"
	defaultSyncHeader     = 4
)

//go:embed partners.yaml
var defaultPartnersYAML []byte

// Partner is a device identity used for the partner handshake.
type Partner struct {
	Name        string // Profile name used for lookup
	Username    string // Device username sent to auth.partnerLogin
	Password    string // Fixed device password
	DeviceModel string // Device model identifier
	Version     string // Protocol version (defaults to "5")
	EncryptKey  string // Blowfish key for outbound payloads
	DecryptKey  string // Blowfish key for the server sync blob
	SyncHeader  int    // Bytes to strip from the decrypted sync blob
}

// Registry is an immutable set of partner profiles keyed by name.
type Registry struct {
	partners map[string]Partner
}

// NewRegistry builds a registry from the given partners.
//
// Returns an error if a partner is missing a required field or a name is
// used twice.
func NewRegistry(partners ...Partner) (*Registry, error) {
	r := &Registry{partners: make(map[string]Partner, len(partners))}
	for _, p := range partners {
		if p.Name == "" {
			return nil, fmt.Errorf("pandora: partner name is required")
		}
		if p.Username == "" || p.Password == "" || p.DeviceModel == "" {
			return nil, fmt.Errorf("pandora: partner %q: username, password and device model are required", p.Name)
		}
		if p.EncryptKey == "" || p.DecryptKey == "" {
			return nil, fmt.Errorf("pandora: partner %q: encrypt and decrypt keys are required", p.Name)
		}
		if p.SyncHeader < 0 {
			return nil, fmt.Errorf("pandora: partner %q: negative sync header", p.Name)
		}
		if _, dup := r.partners[p.Name]; dup {
			return nil, fmt.Errorf("pandora: duplicate partner %q", p.Name)
		}
		if p.Version == "" {
			p.Version = defaultPartnerVersion
		}
		r.partners[p.Name] = p
	}
	return r, nil
}

// partnerFile is the YAML representation of a registry.
type partnerFile struct {
	Partners map[string]struct {
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		DeviceModel string `yaml:"device_model"`
		Version     string `yaml:"version"`
		EncryptKey  string `yaml:"encrypt_key"`
		DecryptKey  string `yaml:"decrypt_key"`
		SyncHeader  *int   `yaml:"sync_header"`
	} `yaml:"partners"`
}

// LoadRegistry decodes a YAML partner document.
//
// The document has a top-level "partners" mapping of profile name to
// username, password, device_model, version, encrypt_key, decrypt_key and
// sync_header (defaults to 4).
func LoadRegistry(r io.Reader) (*Registry, error) {
	var f partnerFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("pandora: decode partners: %w", err)
	}
	if len(f.Partners) == 0 {
		return nil, fmt.Errorf("pandora: no partners defined")
	}

	partners := make([]Partner, 0, len(f.Partners))
	for name, p := range f.Partners {
		header := defaultSyncHeader
		if p.SyncHeader != nil {
			header = *p.SyncHeader
		}
		partners = append(partners, Partner{
			Name:        name,
			Username:    p.Username,
			Password:    p.Password,
			DeviceModel: p.DeviceModel,
			Version:     p.Version,
			EncryptKey:  p.EncryptKey,
			DecryptKey:  p.DecryptKey,
			SyncHeader:  header,
		})
	}
	return NewRegistry(partners...)
}

// LoadRegistryFile reads a YAML partner document from path.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pandora: open partners file: %w", err)
	}
	defer f.Close()
	return LoadRegistry(f)
}

var defaultRegistry = mustLoadDefaultRegistry()

func mustLoadDefaultRegistry() *Registry {
	r, err := LoadRegistry(bytes.NewReader(defaultPartnersYAML))
	if err != nil {
		panic(fmt.Sprintf("pandora: embedded partners: %v", err))
	}
	return r
}

// DefaultRegistry returns the built-in partner profiles.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup returns the partner with the given name.
func (r *Registry) Lookup(name string) (Partner, error) {
	p, ok := r.partners[name]
	if !ok {
		return Partner{}, &Error{Op: "partner.lookup", Kind: ErrInvalidPartner, Message: fmt.Sprintf("unknown profile %q", name)}
	}
	return p, nil
}

// Names returns the sorted profile names in the registry.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.partners))
	for name := range r.partners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
