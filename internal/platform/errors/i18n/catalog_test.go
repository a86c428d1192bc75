package i18n

import "testing"

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if got := GetCatalog("missing-locale"); got != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if got := GetCatalog("  "); got != base {
		t.Fatal("expected blank locale to resolve to en-US catalog")
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "hello {{.Name}}",
	})

	if cat.Format("unknown", nil) != "unknown" {
		t.Fatal("expected code fallback when template missing")
	}
	if cat.Format("code", nil) != "hello <no value>" {
		t.Fatal("expected template to render missing metadata")
	}
}

func TestFormatTemplateErrorFallback(t *testing.T) {
	cat := NewCatalog("test", map[Code]string{
		"code": "{{ if .Name }}",
	})
	if cat.Format("code", map[string]string{"Name": "X"}) != "{{ if .Name }}" {
		t.Fatal("expected template fallback on parse error")
	}
}

func TestFormatRendersStatusMetadata(t *testing.T) {
	got := GetCatalog("en-US").Format(CodeCannotEnterRestricted, map[string]string{"Status": "PENDING"})
	want := "The PENDING membership status can only be assigned by an administrator."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRegisterCatalog(t *testing.T) {
	custom := NewCatalog("custom", map[Code]string{"code": "ok"})
	RegisterCatalog("custom", custom)
	if got := GetCatalog("custom"); got != custom {
		t.Fatal("expected registered catalog")
	}
}

func TestEveryBaseCodeHasMessage(t *testing.T) {
	base := GetCatalog(BaseLocale)
	for _, code := range []Code{
		CodeAdminCannotBeRestricted,
		CodeCannotLeaveRestricted,
		CodeCannotEnterRestricted,
		CodeLastAdminProtected,
		CodeRestrictedUserCannotBeAdmin,
	} {
		if got := base.Format(code, map[string]string{"Status": "LOST"}); got == code {
			t.Fatalf("expected message for %s", code)
		}
	}
}

func TestMatchLocale(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "empty", header: "", want: "en-US"},
		{name: "portuguese", header: "pt-BR,pt;q=0.9", want: "pt-BR"},
		{name: "generic portuguese", header: "pt", want: "pt-BR"},
		{name: "english", header: "en-GB", want: "en-US"},
		{name: "unsupported", header: "ja-JP", want: "en-US"},
		{name: "garbage", header: ";;;", want: "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchLocale(tt.header); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	RegisterCatalog("xx-TEST", NewCatalog("xx-TEST", map[Code]string{}))
	got := Message("xx-TEST", CodeLastAdminProtected, nil)
	if got != "At least one administrator must remain." {
		t.Fatalf("expected base locale message, got %q", got)
	}
	if got := Message("pt-BR", CodeLastAdminProtected, nil); got != "Deve existir pelo menos um administrador." {
		t.Fatalf("expected pt-BR message, got %q", got)
	}
}
