// Copyright (c) 2025 Docsync
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the transport-neutral request and response shapes
// exchanged with the application server. Both bridge implementations encode
// them as a generic key/value document: gRPC as a protobuf Struct, socket.io
// as a JSON event payload.
package model

import (
	"fmt"
)

// Kind selects the server-side handler for a Request.
type Kind string

const (
	KindChangeUser      Kind = "change_user"
	KindChangePrincipal Kind = "change_principal"
	KindCall            Kind = "call"
)

// Request is one client-to-server message.
type Request struct {
	ID         string
	Kind       Kind
	Login      string
	Credential string
	Principal  string
	Method     string
	Args       []string
}

// Response is the server's answer to a Request. A non-empty Error means the
// server rejected the request; row-level failures travel inside Rows.
type Response struct {
	ID     string
	UserID string
	Rows   []string
	Error  string
}

// Map encodes r as a generic document. Lists are []any so the result can be
// handed to structpb.NewStruct unchanged.
func (r Request) Map() map[string]any {
	m := map[string]any{
		"id":   r.ID,
		"kind": string(r.Kind),
	}
	switch r.Kind {
	case KindChangeUser:
		m["login"] = r.Login
		m["credential"] = r.Credential
	case KindChangePrincipal:
		m["principal"] = r.Principal
	case KindCall:
		m["method"] = r.Method
		args := make([]any, len(r.Args))
		for i, a := range r.Args {
			args[i] = a
		}
		m["args"] = args
	}
	return m
}

// ResponseFromMap decodes a generic document into a Response.
func ResponseFromMap(m map[string]any) (Response, error) {
	var resp Response
	var err error
	if resp.ID, err = optString(m, "id"); err != nil {
		return resp, err
	}
	if resp.UserID, err = optString(m, "user_id"); err != nil {
		return resp, err
	}
	if resp.Error, err = optString(m, "error"); err != nil {
		return resp, err
	}
	raw, ok := m["rows"]
	if !ok || raw == nil {
		return resp, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return resp, fmt.Errorf("rows: expected list, got %T", raw)
	}
	resp.Rows = make([]string, 0, len(list))
	for i, v := range list {
		s, ok := v.(string)
		if !ok {
			return resp, fmt.Errorf("rows[%d]: expected string, got %T", i, v)
		}
		resp.Rows = append(resp.Rows, s)
	}
	return resp, nil
}

func optString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, v)
	}
	return s, nil
}
