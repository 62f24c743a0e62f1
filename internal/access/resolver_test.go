package access

import (
	"errors"
	"testing"
)

func TestResolver_AdminAccess(t *testing.T) {
	r := NewResolver()
	r.AddAdmin("admin_user")

	tests := []struct {
		name      string
		user      *UserInfo
		wantLevel Level
	}{
		{"admin via IsAdmin flag", &UserInfo{Name: "some_user", IsAdmin: true}, Admin},
		{"admin via admin list", &UserInfo{Name: "admin_user"}, Admin},
		{"non-admin user", &UserInfo{Name: "regular_user"}, None},
		{"anonymous user with admin name", &UserInfo{Name: "admin_user", IsAnonymous: true}, None},
		{"nil user", nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.user, "products"); got != tt.wantLevel {
				t.Errorf("Resolve() = %v, want %v", got, tt.wantLevel)
			}
		})
	}
}

func TestResolver_UserRules(t *testing.T) {
	r := NewResolver()
	r.AddUserRule("catalog", "products", ReadWrite)
	r.AddUserRule("catalog", "categor*", ReadWrite)
	r.AddUserRule("catalog", "*", ReadOnly)
	r.AddUserRule("support", "reviews", ReadWrite)
	r.AddUserRule("support", "orders", None)

	tests := []struct {
		user     string
		resource string
		want     Level
	}{
		{"catalog", "products", ReadWrite},
		{"catalog", "categories", ReadWrite},
		{"catalog", "Products", ReadWrite},
		{"catalog", "orders", ReadOnly},
		{"support", "reviews", ReadWrite},
		{"support", "orders", None},
		{"support", "products", None},
	}

	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.resource, func(t *testing.T) {
			got := r.Resolve(&UserInfo{Name: tt.user}, tt.resource)
			if got != tt.want {
				t.Errorf("Resolve(%s, %s) = %v, want %v", tt.user, tt.resource, got, tt.want)
			}
		})
	}
}

func TestResolver_ReadOnlyUserCannotWrite(t *testing.T) {
	r := NewResolver()
	r.AddUserRule("reader", "*", ReadOnly)

	level := r.Resolve(&UserInfo{Name: "reader"}, "promotions")
	if !level.CanRead() {
		t.Error("reader should be able to read")
	}
	if level.CanWrite() {
		t.Error("reader must not be able to write")
	}
	if err := level.Require(ReadWrite, "promotions"); err == nil {
		t.Error("Require(ReadWrite) should fail for a reader")
	}
}

func TestResolver_PublicAndAnonymous(t *testing.T) {
	r := NewResolver()
	r.SetAnonymousAccess(ReadOnly)
	r.AddPublicRule("settings", None)
	r.AddPublicRule("shipping", ReadWrite)

	anon := &UserInfo{IsAnonymous: true, AnonymousName: "azure-tiger-42"}

	tests := []struct {
		resource string
		want     Level
	}{
		{"products", ReadOnly},
		{"shipping", ReadWrite},
		{"settings", None},
	}
	for _, tt := range tests {
		if got := r.Resolve(anon, tt.resource); got != tt.want {
			t.Errorf("Resolve(anon, %s) = %v, want %v", tt.resource, got, tt.want)
		}
	}

	// Named users without their own rules fall back to public rules.
	if got := r.Resolve(&UserInfo{Name: "bob"}, "shipping"); got != ReadWrite {
		t.Errorf("Resolve(bob, shipping) = %v, want %v", got, ReadWrite)
	}
}

func TestResolver_Visible(t *testing.T) {
	r := NewResolver()
	r.AddUserRule("ops", "orders", ReadOnly)
	r.AddUserRule("ops", "shipping", ReadWrite)

	got := r.Visible(&UserInfo{Name: "ops"}, []string{"products", "orders", "shipping", "reviews"})
	want := []string{"orders", "shipping"}
	if len(got) != len(want) {
		t.Fatalf("Visible() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Visible()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"read-only", ReadOnly},
		{" RO ", ReadOnly},
		{"rw", ReadWrite},
		{"read-write", ReadWrite},
		{"admin", Admin},
		{"none", None},
		{"bogus", None},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDeniedError(t *testing.T) {
	err := ReadOnly.Require(Admin, "users")
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("Require() error = %v, want *DeniedError", err)
	}
	if denied.Resource != "users" || denied.Need != Admin || denied.Have != ReadOnly {
		t.Errorf("DeniedError = %+v", denied)
	}
	if err := Admin.Require(ReadWrite, "users"); err != nil {
		t.Errorf("Admin.Require(ReadWrite) = %v, want nil", err)
	}
}

func TestDisplayName(t *testing.T) {
	var nilUser *UserInfo
	if got := nilUser.DisplayName(); got != "unknown" {
		t.Errorf("nil DisplayName() = %q", got)
	}
	anon := &UserInfo{Name: "x", IsAnonymous: true, AnonymousName: "calm-otter-07"}
	if got := anon.DisplayName(); got != "calm-otter-07" {
		t.Errorf("anon DisplayName() = %q", got)
	}
}
