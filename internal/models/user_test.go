package models

import "testing"

func TestPrincipalFromClaims(t *testing.T) {
	p, ok := PrincipalFromClaims(map[string]interface{}{"sub": "s1", "email": "a@b.c", "name": "Alice"})
	if !ok {
		t.Fatal("expected principal")
	}
	if p.Subject != "s1" || p.Email != "a@b.c" || p.Name != "Alice" {
		t.Fatalf("unexpected principal: %+v", p)
	}

	// name falls back to email
	p, ok = PrincipalFromClaims(map[string]interface{}{"email": "x@y.z"})
	if !ok || p.Name != "x@y.z" {
		t.Fatalf("unexpected principal: %+v ok=%v", p, ok)
	}

	if _, ok := PrincipalFromClaims(map[string]interface{}{"sub": "s2"}); ok {
		t.Fatal("expected missing email to be rejected")
	}
}
