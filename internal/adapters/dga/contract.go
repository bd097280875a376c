package dga

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dga_gateway/internal/models"
)

// Field is a citizen attribute in the persisted schema.
type Field string

const (
	FieldUserID    Field = "userId"
	FieldCitizenID Field = "citizenId"
	FieldFirstname Field = "firstname"
	FieldLastname  Field = "lastname"
	FieldMobile    Field = "mobile"
	FieldEmail     Field = "email"
)

// RequiredFields must be present in every citizen payload.
var RequiredFields = []Field{FieldUserID, FieldCitizenID, FieldFirstname, FieldLastname}

// Contract pins down the field naming of one provider API revision. The
// provider has changed key casing between revisions, so every name the
// clients read or write comes from here.
type Contract struct {
	Version string

	// outbound citizen data request keys
	AppIDKey  string
	MTokenKey string

	// token broker response, in priority order
	TokenFields []string

	// citizen data response status code, in priority order
	StatusFields []string
	SuccessCode  int

	// where the citizen payload may live; "" is the body itself
	PayloadLocations []string

	// upstream aliases per persisted field, in priority order
	Aliases map[Field][]string
}

var citizenAliases = map[Field][]string{
	FieldUserID:    {"userId", "UserId", "userID"},
	FieldCitizenID: {"citizenId", "CitizenId", "citizenID"},
	FieldFirstname: {"firstName", "firstname", "FirstName"},
	FieldLastname:  {"lastName", "lastname", "LastName"},
	FieldMobile:    {"mobile", "Mobile"},
	FieldEmail:     {"email", "Email"},
}

var contracts = map[string]Contract{
	"v1": {
		Version:          "v1",
		AppIDKey:         "appId",
		MTokenKey:        "mToken",
		TokenFields:      []string{"Result", "result", "Token"},
		StatusFields:     []string{"messageCode", "MessageCode"},
		SuccessCode:      200,
		PayloadLocations: []string{"result", "data", ""},
		Aliases:          citizenAliases,
	},
	"v2": {
		Version:          "v2",
		AppIDKey:         "AppId",
		MTokenKey:        "MToken",
		TokenFields:      []string{"Result", "result", "Token"},
		StatusFields:     []string{"messageCode", "MessageCode"},
		SuccessCode:      200,
		PayloadLocations: []string{"result", "data", ""},
		Aliases:          citizenAliases,
	},
}

// DefaultContractVersion is used when no version is configured.
const DefaultContractVersion = "v1"

// ContractFor returns the mapping table for a provider revision.
func ContractFor(version string) (Contract, error) {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		v = DefaultContractVersion
	}
	c, ok := contracts[v]
	if !ok {
		known := make([]string, 0, len(contracts))
		for k := range contracts {
			known = append(known, k)
		}
		sort.Strings(known)
		return Contract{}, fmt.Errorf("unknown DGA contract version %q (known: %s)", version, strings.Join(known, ", "))
	}
	return c, nil
}

// RetrieveBody builds the outbound citizen data request body.
func (c Contract) RetrieveBody(appID, mToken string) map[string]string {
	return map[string]string{
		c.AppIDKey:  appID,
		c.MTokenKey: mToken,
	}
}

// Token returns the first non-empty token value, or "".
func (c Contract) Token(body map[string]any) string {
	for _, k := range c.TokenFields {
		if s := scalarString(body[k]); s != "" {
			return s
		}
	}
	return ""
}

// StatusCode reads the provider status code field. Only JSON numbers count;
// a quoted "200" is not the success code.
func (c Contract) StatusCode(body map[string]any) (int, bool) {
	for _, k := range c.StatusFields {
		v, ok := body[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return 0, false
			}
			return int(i), true
		case float64:
			if n != float64(int(n)) {
				return 0, false
			}
			return int(n), true
		default:
			return 0, false
		}
	}
	return 0, false
}

// Payload returns the first non-null payload location.
func (c Contract) Payload(body map[string]any) any {
	for _, loc := range c.PayloadLocations {
		if loc == "" {
			return body
		}
		if v, ok := body[loc]; ok && v != nil {
			return v
		}
	}
	return nil
}

// Citizen maps an upstream payload onto the persisted schema. missing lists
// the required fields that were absent or blank.
func (c Contract) Citizen(payload map[string]any) (rec models.CitizenRecord, missing []Field) {
	get := func(f Field) string {
		for _, k := range c.Aliases[f] {
			if s := scalarString(payload[k]); s != "" {
				return s
			}
		}
		return ""
	}

	rec = models.CitizenRecord{
		UserID:    get(FieldUserID),
		CitizenID: get(FieldCitizenID),
		Firstname: get(FieldFirstname),
		Lastname:  get(FieldLastname),
		Mobile:    get(FieldMobile),
		Email:     get(FieldEmail),
	}

	values := map[Field]string{
		FieldUserID:    rec.UserID,
		FieldCitizenID: rec.CitizenID,
		FieldFirstname: rec.Firstname,
		FieldLastname:  rec.Lastname,
	}
	for _, f := range RequiredFields {
		if values[f] == "" {
			missing = append(missing, f)
		}
	}
	return rec, missing
}

// scalarString renders JSON scalars as trimmed strings; objects, arrays and
// null become "".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
