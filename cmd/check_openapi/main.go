// Command check_openapi verifies that api/openapi.yaml still matches the
// service's wire contract: the routes the server registers, the required
// request fields, and the error body shape.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths      map[string]yaml.Node `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
}

var requiredPaths = []string{
	"/healthz",
	"/api/readings",
	"/api/readings/{id}",
}

func main() {
	path := "api/openapi.yaml"
	if len(os.Args) == 2 {
		path = os.Args[1]
	} else if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [openapi.yaml]\n", os.Args[0])
		os.Exit(2)
	}

	doc, err := loadDoc(path)
	if err != nil {
		exitErr(err)
	}

	for _, p := range requiredPaths {
		if _, ok := doc.Paths[p]; !ok {
			exitErr(fmt.Errorf("paths missing %q", p))
		}
	}

	if err := validateErrorResponse(doc); err != nil {
		exitErr(err)
	}
	if err := validateRequired(doc, "CreateReadingRequest", "imageRef"); err != nil {
		exitErr(err)
	}
	if err := validateRequired(doc, "CreateReadingResponse", "id"); err != nil {
		exitErr(err)
	}
	if err := validateRequired(doc, "Reading", "id", "ownerId", "narrativeText"); err != nil {
		exitErr(err)
	}

	fmt.Println("OpenAPI consistency check passed.")
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validateErrorResponse(doc openAPIDoc) error {
	s, err := getSchema(doc, "ErrorResponse")
	if err != nil {
		return err
	}
	if s.Type != "object" {
		return errors.New("ErrorResponse must be object")
	}
	if !makeSet(s.Required)["error"] {
		return errors.New(`ErrorResponse.required must include "error"`)
	}
	prop, ok := s.Properties["error"]
	if !ok || prop.Type != "string" {
		return errors.New("ErrorResponse.error must be string")
	}
	return nil
}

func validateRequired(doc openAPIDoc, name string, fields ...string) error {
	s, err := getSchema(doc, name)
	if err != nil {
		return err
	}
	if s.Type != "object" {
		return fmt.Errorf("%s must be object", name)
	}
	required := makeSet(s.Required)
	for _, field := range fields {
		if !required[field] {
			return fmt.Errorf("%s.required must include %q", name, field)
		}
		if _, ok := s.Properties[field]; !ok {
			return fmt.Errorf("%s.properties missing %q", name, field)
		}
	}
	return nil
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
