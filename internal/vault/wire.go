package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bwtui/internal/model"
)

// wireItem is the agent's JSON shape. Nullable ids and the numeric reprompt flag are
// converted here so the rest of the program only sees model.Item.
type wireItem struct {
	ID             string   `json:"id,omitempty"`
	OrganizationID *string  `json:"organizationId"`
	FolderID       *string  `json:"folderId"`
	CollectionIDs  []string `json:"collectionIds,omitempty"`
	Type           int      `json:"type"`
	Name           string   `json:"name"`
	Notes          *string  `json:"notes"`
	Favorite       bool     `json:"favorite"`
	Reprompt       int      `json:"reprompt"`
	RevisionDate   string   `json:"revisionDate,omitempty"`

	Fields     []model.Field     `json:"fields"`
	Login      *model.Login      `json:"login,omitempty"`
	SecureNote *model.SecureNote `json:"secureNote,omitempty"`
	Card       *model.Card       `json:"card,omitempty"`
	Identity   *model.Identity   `json:"identity,omitempty"`
	SSHKey     *model.SSHKey     `json:"sshKey,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (w wireItem) toModel() (model.Item, error) {
	typ, err := model.ParseItemType(w.Type)
	if err != nil {
		return model.Item{}, err
	}
	it := model.Item{
		ID:             w.ID,
		OrganizationID: deref(w.OrganizationID),
		FolderID:       deref(w.FolderID),
		CollectionIDs:  w.CollectionIDs,
		Type:           typ,
		Name:           w.Name,
		Notes:          deref(w.Notes),
		Favorite:       w.Favorite,
		Reprompt:       w.Reprompt != 0,
		RevisionDate:   w.RevisionDate,
		Fields:         w.Fields,
	}
	// Keep only the payload matching the tag.
	switch typ {
	case model.ItemTypeLogin:
		it.Login = w.Login
		if it.Login == nil {
			it.Login = &model.Login{}
		}
		it.Login.URIs = nonBlankURIs(it.Login.URIs)
	case model.ItemTypeCard:
		it.Card = w.Card
		if it.Card == nil {
			it.Card = &model.Card{}
		}
	case model.ItemTypeIdentity:
		it.Identity = w.Identity
		if it.Identity == nil {
			it.Identity = &model.Identity{}
		}
	case model.ItemTypeSSHKey:
		it.SSHKey = w.SSHKey
		if it.SSHKey == nil {
			it.SSHKey = &model.SSHKey{}
		}
	case model.ItemTypeSecureNote:
		it.SecureNote = w.SecureNote
	}
	if err := it.Validate(); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// nonBlankURIs drops empty URI rows; the agent keeps them but they carry nothing.
func nonBlankURIs(in []model.URI) []model.URI {
	if len(in) == 0 {
		return in
	}
	out := make([]model.URI, 0, len(in))
	for _, u := range in {
		if strings.TrimSpace(u.URI) != "" {
			out = append(out, u)
		}
	}
	return out
}

func fromModel(it model.Item) wireItem {
	w := wireItem{
		ID:             it.ID,
		OrganizationID: optional(it.OrganizationID),
		FolderID:       optional(it.FolderID),
		CollectionIDs:  it.CollectionIDs,
		Type:           int(it.Type),
		Name:           it.Name,
		Notes:          optional(it.Notes),
		Favorite:       it.Favorite,
		RevisionDate:   it.RevisionDate,
		Fields:         it.Fields,
		Login:          it.Login,
		Card:           it.Card,
		Identity:       it.Identity,
		SSHKey:         it.SSHKey,
		SecureNote:     it.SecureNote,
	}
	if it.Reprompt {
		w.Reprompt = 1
	}
	if w.Fields == nil {
		w.Fields = []model.Field{}
	}
	if it.Type == model.ItemTypeSecureNote && w.SecureNote == nil {
		w.SecureNote = &model.SecureNote{}
	}
	return w
}

// decodeItems parses a list response. Items with unknown type tags are skipped and
// reported in skipped; a non-array payload is a ParseError.
func decodeItems(op string, b []byte) (items []model.Item, skipped []error, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return nil, nil, &ParseError{Op: op, Err: err}
	}
	if raws == nil {
		return nil, nil, &ParseError{Op: op, Err: errors.New("expected a JSON array")}
	}
	items = make([]model.Item, 0, len(raws))
	for i, raw := range raws {
		var w wireItem
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, nil, &ParseError{Op: op, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		it, err := w.toModel()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("item %s: %w", w.ID, err))
			continue
		}
		it.Raw = append(json.RawMessage(nil), raw...)
		items = append(items, it)
	}
	return items, skipped, nil
}

func decodeItem(op string, b []byte) (model.Item, error) {
	var w wireItem
	if err := json.Unmarshal(b, &w); err != nil {
		return model.Item{}, &ParseError{Op: op, Err: err}
	}
	it, err := w.toModel()
	if err != nil {
		return model.Item{}, &ParseError{Op: op, Err: err}
	}
	it.Raw = append(json.RawMessage(nil), b...)
	return it, nil
}

// payloadKeys are the nested objects merged key by key instead of replaced, so e.g.
// login.fido2Credentials stays when only the password changed.
var payloadKeys = map[string]bool{
	"login":      true,
	"card":       true,
	"identity":   true,
	"sshKey":     true,
	"secureNote": true,
}

// encodeItem renders the base64 JSON argument the agent expects for create/edit. The
// agent replaces the whole item, so the modelled keys are laid over it.Raw.
func encodeItem(it model.Item) (string, error) {
	b, err := json.Marshal(fromModel(it))
	if err != nil {
		return "", err
	}
	b, err = overlay(it.Raw, b)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func overlay(orig json.RawMessage, edited []byte) ([]byte, error) {
	base, ok := decodeObject(orig)
	if !ok {
		return edited, nil
	}
	top, ok := decodeObject(edited)
	if !ok {
		return nil, errors.New("encode item: not a JSON object")
	}
	for k, v := range top {
		if payloadKeys[k] {
			if merged, ok := mergeObjects(base[k], v); ok {
				base[k] = merged
				continue
			}
		}
		base[k] = v
	}
	return json.Marshal(base)
}

func mergeObjects(orig, edited json.RawMessage) (json.RawMessage, bool) {
	o, ok := decodeObject(orig)
	if !ok {
		return nil, false
	}
	e, ok := decodeObject(edited)
	if !ok {
		return nil, false
	}
	for k, v := range e {
		o[k] = v
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, false
	}
	return b, true
}

// decodeObject reports false for anything but a non-null JSON object.
func decodeObject(b []byte) (map[string]json.RawMessage, bool) {
	if len(b) == 0 {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}
