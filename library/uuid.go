package library

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/feather-lang/gmk"
)

// The uuid pack generates identifiers:
//
//	ID := $(uuid-v4 )
//	NS := $(uuid-v5 dns,build.example.com)
//
// The space in the uuid-v4 call matters: make only dispatches a function
// name followed by whitespace, and $(uuid-v4) without it reads a
// variable of that name. uuid-v4 is random. uuid-v5 is deterministic:
// the namespace is dns, url, oid, x500 or any UUID literal, and the
// same namespace and name always produce the same identifier, which
// makes it the one to use for reproducible builds.
func init() {
	gmk.RegisterLibrary(gmk.Library{
		Name: "uuid",
		Install: func(m *gmk.Make) error {
			if err := m.Export("uuid-v4", uuidV4); err != nil {
				return err
			}
			return m.Export("uuid-v5", uuidV5)
		},
	})
}

func uuidV4(_ ...string) string {
	return uuid.NewString()
}

func uuidV5(namespace, name string) (string, error) {
	var space uuid.UUID
	switch namespace {
	case "dns":
		space = uuid.NameSpaceDNS
	case "url":
		space = uuid.NameSpaceURL
	case "oid":
		space = uuid.NameSpaceOID
	case "x500":
		space = uuid.NameSpaceX500
	default:
		parsed, err := uuid.Parse(namespace)
		if err != nil {
			return "", fmt.Errorf("uuid-v5: bad namespace %q", namespace)
		}
		space = parsed
	}
	return uuid.NewSHA1(space, []byte(name)).String(), nil
}
