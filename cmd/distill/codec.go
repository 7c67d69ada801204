package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/distill/internal/core/model"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatFor picks yaml for .yaml/.yml paths and json otherwise.
func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

func encodeKnowledge(w io.Writer, data *model.KnowledgeData, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		doc, err := yamlDocument(data)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q (want json or yaml)", format)
}

func decodeKnowledge(r io.Reader, format string) (*model.KnowledgeData, error) {
	switch format {
	case formatJSON:
		var data model.KnowledgeData
		if err := json.NewDecoder(r).Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return data.Normalize(), nil
	case formatYAML:
		var doc yaml.Node
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return knowledgeFromYAML(&doc)
	}
	return nil, fmt.Errorf("unsupported format %q (want json or yaml)", format)
}

// yamlDocument builds the node tree by hand because a plain map would lose
// the concept order.
func yamlDocument(data *model.KnowledgeData) (*yaml.Node, error) {
	data = data.Clone()

	concepts := &yaml.Node{Kind: yaml.MappingNode}
	for pair := data.Concepts.Oldest(); pair != nil; pair = pair.Next() {
		attrs := pair.Value
		if attrs == nil {
			attrs = model.Attributes{}
		}
		value := &yaml.Node{}
		if err := value.Encode(attrs); err != nil {
			return nil, fmt.Errorf("failed to encode concept %q: %w", pair.Key, err)
		}
		concepts.Content = append(concepts.Content, stringNode(pair.Key), value)
	}

	rels := &yaml.Node{}
	if err := rels.Encode(data.Relationships); err != nil {
		return nil, fmt.Errorf("failed to encode relationships: %w", err)
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			stringNode("concepts"), concepts,
			stringNode("relationships"), rels,
		},
	}, nil
}

func knowledgeFromYAML(doc *yaml.Node) (*model.KnowledgeData, error) {
	data := model.NewKnowledgeData()
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("knowledge base document must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		switch key {
		case "concepts":
			if value.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("concepts must be a mapping")
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				attrs := model.Attributes{}
				if err := value.Content[j+1].Decode(&attrs); err != nil {
					return nil, fmt.Errorf("concept %q: %w", value.Content[j].Value, err)
				}
				if attrs == nil {
					attrs = model.Attributes{}
				}
				data.Concepts.Set(value.Content[j].Value, attrs)
			}
		case "relationships":
			if err := value.Decode(&data.Relationships); err != nil {
				return nil, fmt.Errorf("relationships: %w", err)
			}
		}
	}
	return data.Normalize(), nil
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
