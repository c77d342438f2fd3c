package format

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bwtui/internal/model"

	"gopkg.in/yaml.v3"
)

// ErrValidation marks edited content that can't be turned into a mutation.
var ErrValidation = errors.New("invalid item")

var ErrMissingName = fmt.Errorf("%w: name is required", ErrValidation)

const editHeader = `# Edit the item and save to apply. Close without saving to keep it unchanged.
# To cancel, empty the file or put "# CANCEL" on the first line.
`

// editDoc is the human-facing YAML surface for login items.
type editDoc struct {
	Name           string        `yaml:"name"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	URL            string        `yaml:"url"`
	TOTPSecret     string        `yaml:"totp_secret"`
	Notes          string        `yaml:"notes"`
	Favorite       bool          `yaml:"favorite"`
	Reprompt       bool          `yaml:"reprompt"`
	AdditionalURLs []string      `yaml:"additional_urls"`
	CustomFields   []customField `yaml:"custom_fields"`
}

type customField struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Hidden bool   `yaml:"hidden"`
}

func docFromItem(it model.Item) editDoc {
	d := editDoc{
		Name:           it.Name,
		Notes:          it.Notes,
		Favorite:       it.Favorite,
		Reprompt:       it.Reprompt,
		AdditionalURLs: []string{},
		CustomFields:   []customField{},
	}
	if it.Login != nil {
		d.Username = it.Login.Username
		d.Password = it.Login.Password
		d.TOTPSecret = it.Login.TOTP
		for i, u := range it.Login.URIs {
			if i == 0 {
				d.URL = u.URI
				continue
			}
			d.AdditionalURLs = append(d.AdditionalURLs, u.URI)
		}
	}
	for _, f := range it.Fields {
		d.CustomFields = append(d.CustomFields, customField{Name: f.Name, Value: f.Value, Hidden: f.Type == model.FieldHidden})
	}
	return d
}

// ItemToYAML renders a login item for editing. A zero item yields the create template.
func ItemToYAML(it model.Item) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(editHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(docFromItem(it)); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// YAMLToItem parses edited content into a login item.
//
// It returns (nil, nil) for empty or comment-only content, and (nil, ErrMissingName)
// when the name is missing.
func YAMLToItem(content string) (*model.Item, error) {
	if isBlankYAML(content) {
		return nil, nil
	}
	var d editDoc
	if err := yaml.Unmarshal([]byte(content), &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, ErrMissingName
	}

	it := model.Item{
		Type:     model.ItemTypeLogin,
		Name:     d.Name,
		Notes:    d.Notes,
		Favorite: d.Favorite,
		Reprompt: d.Reprompt,
		Login: &model.Login{
			Username: d.Username,
			Password: d.Password,
			TOTP:     d.TOTPSecret,
		},
	}
	if d.URL != "" {
		it.Login.URIs = append(it.Login.URIs, model.URI{URI: d.URL})
	}
	for _, u := range d.AdditionalURLs {
		if u != "" {
			it.Login.URIs = append(it.Login.URIs, model.URI{URI: u})
		}
	}
	for _, f := range d.CustomFields {
		typ := model.FieldText
		if f.Hidden {
			typ = model.FieldHidden
		}
		it.Fields = append(it.Fields, model.Field{Name: f.Name, Value: f.Value, Type: typ})
	}
	return &it, nil
}

func isBlankYAML(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		l := strings.TrimSpace(line)
		if l == "" || strings.HasPrefix(l, "#") || l == "---" {
			continue
		}
		return false
	}
	return true
}

// MergeEdit applies the editable fields of edited onto orig. Everything the YAML surface
// does not expose (id, organization, folder, collections, revision data, URI match rules,
// non-text field types and link targets, the agent's raw object) is kept from orig, since
// the agent replaces rather than patches.
func MergeEdit(orig, edited model.Item) model.Item {
	out := orig.Clone()
	out.Name = edited.Name
	out.Notes = edited.Notes
	out.Favorite = edited.Favorite
	out.Reprompt = edited.Reprompt

	if out.Login == nil {
		out.Login = &model.Login{}
	}
	if edited.Login != nil {
		out.Login.Username = edited.Login.Username
		out.Login.Password = edited.Login.Password
		out.Login.TOTP = edited.Login.TOTP

		match := map[string]*int{}
		if orig.Login != nil {
			for _, u := range orig.Login.URIs {
				match[u.URI] = u.Match
			}
		}
		uris := make([]model.URI, 0, len(edited.Login.URIs))
		for _, u := range edited.Login.URIs {
			uris = append(uris, model.URI{URI: u.URI, Match: match[u.URI]})
		}
		out.Login.URIs = uris
	}

	origField := map[string]model.Field{}
	for _, f := range orig.Fields {
		if _, seen := origField[f.Name]; !seen {
			origField[f.Name] = f
		}
	}
	fields := make([]model.Field, 0, len(edited.Fields))
	for _, f := range edited.Fields {
		if of, ok := origField[f.Name]; ok && (of.Type == model.FieldBoolean || of.Type == model.FieldLinked) && f.Type == model.FieldText {
			f.Type = of.Type
			f.LinkedID = of.LinkedID
		}
		fields = append(fields, f)
	}
	out.Fields = fields
	return out
}

// Changed reports whether edited differs from orig on any field the YAML surface exposes.
func Changed(orig, edited model.Item) bool {
	return !reflect.DeepEqual(docFromItem(orig), docFromItem(edited))
}
