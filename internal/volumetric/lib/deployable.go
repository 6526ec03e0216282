package lib

import (
	"fmt"

	"github.com/gingerrexayers/volumetric/internal/volumetric/types"
	"gopkg.in/yaml.v3"
)

// volumesKey holds the manifest inside a deployable descriptor.
const volumesKey = "volumes"

// Deployable is a self-contained descriptor: settings plus the volumes to
// materialise.
type Deployable struct {
	Settings Settings
	Volumes  types.Manifest
}

// EncodeDeployable renders the settings mapping followed by a volumes key
// mirroring the manifest.
func EncodeDeployable(d Deployable) ([]byte, error) {
	if _, err := EncodeManifest(d.Volumes); err != nil {
		return nil, err
	}
	volumes := map[string]types.Volume(d.Volumes)
	if volumes == nil {
		volumes = map[string]types.Volume{}
	}
	var volumesNode yaml.Node
	if err := volumesNode.Encode(volumes); err != nil {
		return nil, fmt.Errorf("failed to encode volumes: %w", err)
	}
	node := d.Settings.mappingNode()
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: volumesKey},
		&volumesNode,
	)
	return encodeNode(node)
}

// DecodeDeployable parses a descriptor. A missing volumes key is an empty
// manifest.
func DecodeDeployable(content []byte) (Deployable, error) {
	d := Deployable{Settings: DefaultSettings(), Volumes: types.Manifest{}}
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return Deployable{}, fmt.Errorf("failed to parse deployable: %w: %w", ErrMalformed, err)
	}
	if len(doc.Content) == 0 {
		return d, nil
	}
	root := doc.Content[0]
	if err := d.Settings.applyMapping(root, func(key string) bool { return key == volumesKey }); err != nil {
		return Deployable{}, err
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != volumesKey {
			continue
		}
		raw := map[string]types.Volume{}
		if err := root.Content[i+1].Decode(&raw); err != nil {
			return Deployable{}, fmt.Errorf("failed to parse deployable volumes: %w: %w", ErrMalformed, err)
		}
		m, err := manifestFromRaw(raw)
		if err != nil {
			return Deployable{}, err
		}
		d.Volumes = m
	}
	return d, nil
}
