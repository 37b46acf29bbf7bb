package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed content_types.yaml
var defaultContentTypes []byte

// Field kinds understood by the content service when coercing input.
const (
	KindString = "string"
	KindNumber = "number"
	KindBool   = "bool"
	KindList   = "list"
	KindObject = "object"
	KindDate   = "date"
)

// Announcement triggers.
const (
	AnnounceOnCreated   = "created"
	AnnounceOnPublished = "published"
)

// Upload metadata sources usable in AssetSpec.Meta.
const (
	MetaFilename = "filename"
	MetaSize     = "size"
	MetaMIME     = "mime"
	MetaKind     = "kind"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)
var routePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ContentType describes one schema-driven collection.
type ContentType struct {
	Name          string            `yaml:"name"`
	Display       string            `yaml:"display"`
	Folder        string            `yaml:"folder"`
	Asset         *AssetSpec        `yaml:"asset"`
	Statuses      []string          `yaml:"statuses"`
	DefaultStatus string            `yaml:"default_status"`
	PublicStatus  string            `yaml:"public_status"`
	TypeField     string            `yaml:"type_field"`
	Sort          SortSpec          `yaml:"sort"`
	Required      []string          `yaml:"required"`
	Fields        map[string]string `yaml:"fields"`
	Defaults      map[string]any    `yaml:"defaults"`
	Slug          *SlugSpec         `yaml:"slug"`
	ViewCounter   string            `yaml:"view_counter"`
	Announce      *AnnounceSpec     `yaml:"announce"`
}

// AssetSpec names the fields that hold an uploaded asset.
type AssetSpec struct {
	Field    string `yaml:"field"`
	Handle   string `yaml:"handle"`
	Required bool   `yaml:"required"`
	// Meta maps record field -> upload metadata source (filename, size, mime, kind).
	Meta map[string]string `yaml:"meta"`
}

type SortSpec struct {
	Field string `yaml:"field"`
	Desc  bool   `yaml:"desc"`
}

type SlugSpec struct {
	From  string `yaml:"from"`
	Field string `yaml:"field"`
}

// AnnounceSpec configures the newsletter broadcast sent for new content.
type AnnounceSpec struct {
	On            string `yaml:"on"`
	Title         string `yaml:"title"`
	Intro         string `yaml:"intro"`
	ExcerptField  string `yaml:"excerpt_field"`
	ExcerptLength int    `yaml:"excerpt_length"`
	CTAText       string `yaml:"cta_text"`
	CTAPath       string `yaml:"cta_path"`
}

// HandleField returns the field holding the asset deletion handle, or "".
func (c *ContentType) HandleField() string {
	if c.Asset == nil {
		return ""
	}
	if c.Asset.Handle != "" {
		return c.Asset.Handle
	}
	return c.Asset.Field + "PublicId"
}

// AssetField returns the field holding the asset URL, or "".
func (c *ContentType) AssetField() string {
	if c.Asset == nil {
		return ""
	}
	return c.Asset.Field
}

// Kind returns the declared kind of field, or "" if undeclared.
func (c *ContentType) Kind(field string) string {
	return c.Fields[field]
}

// ContentTypes is the validated registry, keyed by route name.
type ContentTypes struct {
	byName map[string]*ContentType
	order  []string
}

// Lookup returns the content type registered under name.
func (c *ContentTypes) Lookup(name string) (*ContentType, bool) {
	ct, ok := c.byName[name]
	return ct, ok
}

// All returns the content types in declaration order.
func (c *ContentTypes) All() []*ContentType {
	out := make([]*ContentType, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.byName[n])
	}
	return out
}

// Names returns the registered names sorted alphabetically.
func (c *ContentTypes) Names() []string {
	names := append([]string(nil), c.order...)
	sort.Strings(names)
	return names
}

// LoadContentTypes reads the table from path, or the embedded default if path is empty.
// The path parameter is expected to come from a trusted source (environment).
func LoadContentTypes(path string) (*ContentTypes, error) {
	data := defaultContentTypes
	if path != "" {
		// #nosec G304 -- path comes from CONTENT_TYPES_FILE, not user input
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read content types file: %w", err)
		}
		data = b
	}
	return ParseContentTypes(data)
}

// ParseContentTypes parses and validates a YAML content type table.
func ParseContentTypes(data []byte) (*ContentTypes, error) {
	var doc struct {
		ContentTypes []*ContentType `yaml:"content_types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}
	if len(doc.ContentTypes) == 0 {
		return nil, errors.New("no content types defined")
	}

	reg := &ContentTypes{byName: make(map[string]*ContentType, len(doc.ContentTypes))}
	for _, ct := range doc.ContentTypes {
		if err := validateContentType(ct); err != nil {
			return nil, fmt.Errorf("content type %q: %w", ct.Name, err)
		}
		if _, dup := reg.byName[ct.Name]; dup {
			return nil, fmt.Errorf("content type %q declared twice", ct.Name)
		}
		reg.byName[ct.Name] = ct
		reg.order = append(reg.order, ct.Name)
	}
	return reg, nil
}

func validateContentType(ct *ContentType) error {
	if !routePattern.MatchString(ct.Name) {
		return errors.New("name must be lower-case letters, digits and dashes")
	}
	if ct.Display == "" {
		return errors.New("display is required")
	}
	if ct.Folder == "" {
		ct.Folder = ct.Name
	}
	if ct.Fields == nil {
		ct.Fields = map[string]string{}
	}
	for name, kind := range ct.Fields {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid field name %q", name)
		}
		switch kind {
		case KindString, KindNumber, KindBool, KindList, KindObject, KindDate:
		default:
			return fmt.Errorf("field %q has unknown kind %q", name, kind)
		}
	}

	if len(ct.Statuses) == 0 {
		return errors.New("at least one status is required")
	}
	if ct.DefaultStatus == "" {
		ct.DefaultStatus = ct.Statuses[0]
	}
	if !contains(ct.Statuses, ct.DefaultStatus) {
		return fmt.Errorf("default_status %q is not a declared status", ct.DefaultStatus)
	}
	if ct.PublicStatus != "" && !contains(ct.Statuses, ct.PublicStatus) {
		return fmt.Errorf("public_status %q is not a declared status", ct.PublicStatus)
	}

	if ct.Asset != nil {
		if !identifierPattern.MatchString(ct.Asset.Field) {
			return fmt.Errorf("invalid asset field %q", ct.Asset.Field)
		}
		if !identifierPattern.MatchString(ct.HandleField()) {
			return fmt.Errorf("invalid asset handle %q", ct.HandleField())
		}
		for field, src := range ct.Asset.Meta {
			if _, ok := ct.Fields[field]; !ok {
				return fmt.Errorf("asset meta field %q is not declared", field)
			}
			switch src {
			case MetaFilename, MetaSize, MetaMIME, MetaKind:
			default:
				return fmt.Errorf("asset meta %q has unknown source %q", field, src)
			}
		}
	}

	for _, f := range ct.Required {
		if _, ok := ct.Fields[f]; !ok {
			return fmt.Errorf("required field %q is not declared", f)
		}
	}
	for f := range ct.Defaults {
		if _, ok := ct.Fields[f]; !ok {
			return fmt.Errorf("default for undeclared field %q", f)
		}
	}
	if ct.TypeField != "" {
		if _, ok := ct.Fields[ct.TypeField]; !ok {
			return fmt.Errorf("type_field %q is not declared", ct.TypeField)
		}
	}
	if ct.Sort.Field != "" && ct.Sort.Field != "createdAt" && ct.Sort.Field != "updatedAt" {
		if _, ok := ct.Fields[ct.Sort.Field]; !ok {
			return fmt.Errorf("sort field %q is not declared", ct.Sort.Field)
		}
	}
	if ct.Slug != nil {
		if ct.Fields[ct.Slug.From] != KindString || ct.Fields[ct.Slug.Field] != KindString {
			return errors.New("slug from/field must be declared string fields")
		}
	}
	if ct.ViewCounter != "" && ct.Fields[ct.ViewCounter] != KindNumber {
		return fmt.Errorf("view_counter %q must be a number field", ct.ViewCounter)
	}

	if a := ct.Announce; a != nil {
		if a.On != AnnounceOnCreated && a.On != AnnounceOnPublished {
			return fmt.Errorf("announce.on must be %q or %q", AnnounceOnCreated, AnnounceOnPublished)
		}
		if a.On == AnnounceOnPublished && ct.PublicStatus == "" {
			return errors.New("announce on published needs a public_status")
		}
		if a.Title == "" {
			return errors.New("announce.title is required")
		}
		if a.ExcerptLength <= 0 {
			a.ExcerptLength = 200
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
