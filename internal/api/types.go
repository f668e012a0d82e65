package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an identifier the server sends either as a JSON number or a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

type SignInResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

type User struct {
	ID ID `json:"id"`
}

type OrgRole struct {
	AccessRole string `json:"accessRole"`
	OrgID      ID     `json:"orgId"`
}

type Project struct {
	ID   ID     `json:"id"`
	Name string `json:"name,omitempty"`
}

// LinkInfo is the result of the pages-deploy existence check for a bundle.
type LinkInfo struct {
	Exist     bool   `json:"exist"`
	OwnerName string `json:"ownerName,omitempty"`
	Name      string `json:"name,omitempty"`
	ProjectID ID     `json:"projectId,omitempty"`
}

type UploadResult struct {
	PageID ID `json:"pageId"`
}
