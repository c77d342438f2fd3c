package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ItemType mirrors the vault agent's numeric cipher type.
type ItemType int

const (
	ItemTypeLogin      ItemType = 1
	ItemTypeSecureNote ItemType = 2
	ItemTypeCard       ItemType = 3
	ItemTypeIdentity   ItemType = 4
	ItemTypeSSHKey     ItemType = 5
)

var ErrUnknownItemType = errors.New("unknown item type")

func ParseItemType(code int) (ItemType, error) {
	switch t := ItemType(code); t {
	case ItemTypeLogin, ItemTypeSecureNote, ItemTypeCard, ItemTypeIdentity, ItemTypeSSHKey:
		return t, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownItemType, code)
	}
}

func (t ItemType) String() string {
	switch t {
	case ItemTypeLogin:
		return "Login"
	case ItemTypeSecureNote:
		return "Secure Note"
	case ItemTypeCard:
		return "Card"
	case ItemTypeIdentity:
		return "Identity"
	case ItemTypeSSHKey:
		return "SSH Key"
	default:
		return "Unknown"
	}
}

type FieldType int

const (
	FieldText    FieldType = 0
	FieldHidden  FieldType = 1
	FieldBoolean FieldType = 2
	FieldLinked  FieldType = 3
)

type Field struct {
	Name  string    `json:"name"`
	Value string    `json:"value"`
	Type  FieldType `json:"type"`
	// LinkedID names the item property a FieldLinked field points at.
	LinkedID *int `json:"linkedId,omitempty"`
}

type URI struct {
	URI   string `json:"uri"`
	Match *int   `json:"match"`
}

type Login struct {
	Username             string `json:"username"`
	Password             string `json:"password"`
	TOTP                 string `json:"totp"`
	URIs                 []URI  `json:"uris"`
	PasswordRevisionDate string `json:"passwordRevisionDate,omitempty"`
}

type Card struct {
	CardholderName string `json:"cardholderName"`
	Brand          string `json:"brand"`
	Number         string `json:"number"`
	ExpMonth       string `json:"expMonth"`
	ExpYear        string `json:"expYear"`
	Code           string `json:"code"`
}

type Identity struct {
	Title          string `json:"title"`
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName"`
	LastName       string `json:"lastName"`
	Address1       string `json:"address1"`
	Address2       string `json:"address2"`
	Address3       string `json:"address3"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postalCode"`
	Country        string `json:"country"`
	Company        string `json:"company"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	SSN            string `json:"ssn"`
	Username       string `json:"username"`
	PassportNumber string `json:"passportNumber"`
	LicenseNumber  string `json:"licenseNumber"`
}

// FullName joins the non-empty name parts.
func (id Identity) FullName() string {
	var parts []string
	for _, p := range []string{id.Title, id.FirstName, id.MiddleName, id.LastName} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type SSHKey struct {
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	KeyFingerprint string `json:"keyFingerprint"`
}

// SecureNote is the agent's empty marker payload for note items.
type SecureNote struct {
	Type int `json:"type"`
}

// Item is one vault entry. Exactly one payload pointer matching Type is set
// (SecureNote may also have none).
type Item struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organizationId,omitempty"`
	FolderID       string   `json:"folderId,omitempty"`
	CollectionIDs  []string `json:"collectionIds,omitempty"`
	Type           ItemType `json:"type"`
	Name           string   `json:"name"`
	Notes          string   `json:"notes,omitempty"`
	Favorite       bool     `json:"favorite"`
	Reprompt       bool     `json:"reprompt"`
	RevisionDate   string   `json:"revisionDate,omitempty"`
	Fields         []Field  `json:"fields,omitempty"`

	Login      *Login      `json:"login,omitempty"`
	SecureNote *SecureNote `json:"secureNote,omitempty"`
	Card       *Card       `json:"card,omitempty"`
	Identity   *Identity   `json:"identity,omitempty"`
	SSHKey     *SSHKey     `json:"sshKey,omitempty"`

	// Raw is the agent's original JSON object. Create/edit payloads are laid over it so
	// keys this program does not model (passkeys, password history) survive an edit.
	Raw json.RawMessage `json:"-"`
}

var ErrPayloadMismatch = errors.New("item payload does not match type")

// Validate checks that the populated payload matches the type tag.
func (it Item) Validate() error {
	set := 0
	for _, p := range []bool{it.Login != nil, it.Card != nil, it.Identity != nil, it.SSHKey != nil} {
		if p {
			set++
		}
	}
	var ok bool
	switch it.Type {
	case ItemTypeLogin:
		ok = set == 1 && it.Login != nil && it.SecureNote == nil
	case ItemTypeCard:
		ok = set == 1 && it.Card != nil && it.SecureNote == nil
	case ItemTypeIdentity:
		ok = set == 1 && it.Identity != nil && it.SecureNote == nil
	case ItemTypeSSHKey:
		ok = set == 1 && it.SSHKey != nil && it.SecureNote == nil
	case ItemTypeSecureNote:
		ok = set == 0
	default:
		return fmt.Errorf("%w: %d", ErrUnknownItemType, int(it.Type))
	}
	if !ok {
		return fmt.Errorf("%w: %s %q", ErrPayloadMismatch, it.Type, it.ID)
	}
	return nil
}

// URIs returns the login URIs as plain strings.
func (it Item) URIs() []string {
	if it.Login == nil {
		return nil
	}
	out := make([]string, 0, len(it.Login.URIs))
	for _, u := range it.Login.URIs {
		if s := strings.TrimSpace(u.URI); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Username resolves the value copied as "username": login username, then
// identity email, then card holder name.
func (it Item) Username() string {
	if it.Login != nil && it.Login.Username != "" {
		return it.Login.Username
	}
	if it.Identity != nil && it.Identity.Email != "" {
		return it.Identity.Email
	}
	if it.Card != nil && it.Card.CardholderName != "" {
		return it.Card.CardholderName
	}
	return ""
}

// Password resolves the value copied as "password": login password, then card number.
func (it Item) Password() string {
	if it.Login != nil && it.Login.Password != "" {
		return it.Login.Password
	}
	if it.Card != nil && it.Card.Number != "" {
		return it.Card.Number
	}
	return ""
}

func (it Item) TOTPSeed() string {
	if it.Login == nil {
		return ""
	}
	return strings.TrimSpace(it.Login.TOTP)
}

// Clone returns a deep copy so edits never alias the store's snapshot.
func (it Item) Clone() Item {
	out := it
	out.CollectionIDs = append([]string(nil), it.CollectionIDs...)
	out.Fields = append([]Field(nil), it.Fields...)
	out.Raw = append(json.RawMessage(nil), it.Raw...)
	if it.Login != nil {
		l := *it.Login
		l.URIs = append([]URI(nil), it.Login.URIs...)
		out.Login = &l
	}
	if it.SecureNote != nil {
		n := *it.SecureNote
		out.SecureNote = &n
	}
	if it.Card != nil {
		c := *it.Card
		out.Card = &c
	}
	if it.Identity != nil {
		id := *it.Identity
		out.Identity = &id
	}
	if it.SSHKey != nil {
		k := *it.SSHKey
		out.SSHKey = &k
	}
	return out
}
