package lib

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/gingerrexayers/volumetric/internal/volumetric/transport"
	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"gopkg.in/yaml.v3"
)

// RepositoryVersion is the layout version written by this engine.
const RepositoryVersion = "0.1.0"

// unsetValue is how an absent optional setting is displayed.
const unsetValue = "~"

// Settings is the repository configuration.
type Settings struct {
	Version          string
	RuntimeKind      types.RuntimeKind
	RemoteURI        *string
	DeploymentPolicy types.DeploymentPolicy
}

// DefaultSettings returns the configuration of a freshly initialized repository.
func DefaultSettings() Settings {
	return Settings{
		Version:          RepositoryVersion,
		RuntimeKind:      types.RuntimeDocker,
		DeploymentPolicy: types.PolicyNoOverwrite,
	}
}

// Setting is one key/value pair in display form.
type Setting struct {
	Key   string
	Value string
}

// setter binds a settings key to the field it controls.
type setter struct {
	key       string
	set       func(s *Settings, value string) error
	get       func(s *Settings) string
	reset     func(dst *Settings, defaults *Settings)
	isDefault func(s *Settings, defaults *Settings) bool
}

var settingsSetters = []setter{
	{
		key:       "version",
		set:       func(s *Settings, v string) error { s.Version = v; return nil },
		get:       func(s *Settings) string { return s.Version },
		reset:     func(dst, def *Settings) { dst.Version = def.Version },
		isDefault: func(s, def *Settings) bool { return s.Version == def.Version },
	},
	{
		key: "oci_runtime",
		set: func(s *Settings, v string) error {
			kind, err := types.ParseRuntimeKind(v)
			if err != nil {
				return &VariantError{Key: "oci_runtime", Value: v}
			}
			s.RuntimeKind = kind
			return nil
		},
		get:       func(s *Settings) string { return string(s.RuntimeKind) },
		reset:     func(dst, def *Settings) { dst.RuntimeKind = def.RuntimeKind },
		isDefault: func(s, def *Settings) bool { return s.RuntimeKind == def.RuntimeKind },
	},
	{
		key: "remote_uri",
		set: func(s *Settings, v string) error { s.RemoteURI = &v; return nil },
		get: func(s *Settings) string {
			if s.RemoteURI == nil {
				return unsetValue
			}
			return *s.RemoteURI
		},
		reset: func(dst, def *Settings) { dst.RemoteURI = def.RemoteURI },
		isDefault: func(s, def *Settings) bool {
			if s.RemoteURI == nil || def.RemoteURI == nil {
				return s.RemoteURI == def.RemoteURI
			}
			return *s.RemoteURI == *def.RemoteURI
		},
	},
	{
		key: "deployment_policy",
		set: func(s *Settings, v string) error {
			policy, err := types.ParseDeploymentPolicy(v)
			if err != nil {
				return &VariantError{Key: "deployment_policy", Value: v}
			}
			s.DeploymentPolicy = policy
			return nil
		},
		get:       func(s *Settings) string { return string(s.DeploymentPolicy) },
		reset:     func(dst, def *Settings) { dst.DeploymentPolicy = def.DeploymentPolicy },
		isDefault: func(s, def *Settings) bool { return s.DeploymentPolicy == def.DeploymentPolicy },
	},
}

func findSetter(key string) (*setter, error) {
	for i := range settingsSetters {
		if settingsSetters[i].key == key {
			return &settingsSetters[i], nil
		}
	}
	return nil, &VariantError{Key: key}
}

// SettingKeys lists the recognised keys in serialization order.
func SettingKeys() []string {
	keys := make([]string, len(settingsSetters))
	for i, st := range settingsSetters {
		keys[i] = st.key
	}
	return keys
}

// Set assigns value to key. A nil value restores the default. On error the
// settings are left unchanged.
func (s *Settings) Set(key string, value *string) error {
	st, err := findSetter(key)
	if err != nil {
		return err
	}
	if value == nil {
		def := DefaultSettings()
		st.reset(s, &def)
		return nil
	}
	next := *s
	if err := st.set(&next, *value); err != nil {
		return err
	}
	*s = next
	return nil
}

// Get returns the display form of key.
func (s *Settings) Get(key string) (string, error) {
	st, err := findSetter(key)
	if err != nil {
		return "", err
	}
	return st.get(s), nil
}

// Pairs returns every setting in serialization order.
func (s *Settings) Pairs() []Setting {
	out := make([]Setting, len(settingsSetters))
	for i, st := range settingsSetters {
		out[i] = Setting{Key: st.key, Value: st.get(s)}
	}
	return out
}

// CheckCompatible rejects repositories whose major version differs from the
// engine's.
func (s *Settings) CheckCompatible() error {
	have, err := semver.NewVersion(s.Version)
	if err != nil {
		return fmt.Errorf("repository version %q: %w", s.Version, ErrMalformed)
	}
	want := semver.MustParse(RepositoryVersion)
	if have.Major() != want.Major() {
		return fmt.Errorf("repository version %s, engine version %s: %w", have, want, ErrUnsupportedVersion)
	}
	return nil
}

// mappingNode renders the settings as an ordered YAML mapping. The version is
// always present; every other key only when it differs from its default.
func (s *Settings) mappingNode() *yaml.Node {
	def := DefaultSettings()
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, st := range settingsSetters {
		if st.key != "version" && st.isDefault(s, &def) {
			continue
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: st.key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: st.get(s)},
		)
	}
	return node
}

// applyMapping feeds every key of a YAML mapping through the setters.
func (s *Settings) applyMapping(node *yaml.Node, skip func(key string) bool) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("settings must be a mapping: %w", ErrMalformed)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return fmt.Errorf("settings key at line %d: %w", k.Line, ErrMalformed)
		}
		if skip != nil && skip(k.Value) {
			continue
		}
		switch {
		case v.Kind == yaml.ScalarNode && v.Tag == "!!null":
			if err := s.Set(k.Value, nil); err != nil {
				return err
			}
		case v.Kind == yaml.ScalarNode:
			value := v.Value
			if err := s.Set(k.Value, &value); err != nil {
				return err
			}
		default:
			return fmt.Errorf("settings value for %s: %w", k.Value, ErrMalformed)
		}
	}
	return nil
}

// MarshalSettings serializes s, suppressing keys at their default value.
func MarshalSettings(s Settings) ([]byte, error) {
	return encodeNode(s.mappingNode())
}

// UnmarshalSettings starts from the defaults and applies every persisted key.
func UnmarshalSettings(content []byte) (Settings, error) {
	s := DefaultSettings()
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w: %w", ErrMalformed, err)
	}
	if len(doc.Content) == 0 {
		return s, nil
	}
	if err := s.applyMapping(doc.Content[0], nil); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettings reads the settings at p. A missing file yields the defaults.
func LoadSettings(t transport.Transport, p string) (Settings, error) {
	content, err := transport.ReadAll(t, p)
	if errors.Is(err, ErrNotFound) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return UnmarshalSettings(content)
}

// WriteSettings persists s at p atomically.
func WriteSettings(t transport.Transport, p string, s Settings) error {
	content, err := MarshalSettings(s)
	if err != nil {
		return err
	}
	if err := t.Write(p, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

func encodeNode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNode(&buf, node); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(w io.Writer, node *yaml.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
