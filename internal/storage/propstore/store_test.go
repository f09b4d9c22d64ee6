package propstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"hostel_rates/internal/domain"
	"hostel_rates/internal/storage/propstore"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hostels.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	props, err := propstore.New("").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != len(propstore.Defaults) {
		t.Fatalf("got %d properties, want the %d defaults", len(props), len(propstore.Defaults))
	}
	if props[0].Name != "Hostal Ramos" || props[0].Category != domain.CategoryPrivate {
		t.Errorf("first default = %+v", props[0])
	}
}

func TestLoad_FileExtendsDefaults(t *testing.T) {
	path := writeFile(t, `{"hostels":[
		{"name":"Casa Nueva","type":"Privado","url":"https://www.booking.com/hotel/es/casa-nueva.es.html"},
		{"name":"Alias Link","type":"Compartido","link":"https://www.booking.com/hotel/es/alias.es.html"},
		{"name":"Accented","type":"Híbrido","url":"https://www.booking.com/hotel/es/accented.es.html"},
		{"name":"Bad Type","type":"Suite","url":"https://www.booking.com/hotel/es/bad.es.html"},
		{"name":"No URL","type":"Privado"}
	]}`)

	props, err := propstore.New(path).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	// 5 entries minus the unknown-type one
	want := len(propstore.Defaults) + 4
	if len(props) != want {
		t.Fatalf("got %d properties, want %d", len(props), want)
	}

	extra := props[len(propstore.Defaults):]
	if extra[0].Name != "Casa Nueva" || extra[0].Category != domain.CategoryPrivate {
		t.Errorf("entry 0 = %+v", extra[0])
	}
	if extra[1].URL != "https://www.booking.com/hotel/es/alias.es.html" {
		t.Errorf("link alias not honored: %+v", extra[1])
	}
	if extra[2].Category != domain.CategoryHybrid {
		t.Errorf("accented Híbrido not parsed: %+v", extra[2])
	}
	// the url-less entry stays; the fetcher classifies it later
	if extra[3].Name != "No URL" || extra[3].URL != "" {
		t.Errorf("entry without url should be kept: %+v", extra[3])
	}
}

func TestLoad_FileProblemsDegradeToDefaults(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"invalid json", writeFile(t, `{"hostels": [`)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			props, err := propstore.New(c.path).Load(context.Background())
			if err != nil {
				t.Fatalf("file problems must not fail the run: %v", err)
			}
			if len(props) != len(propstore.Defaults) {
				t.Fatalf("got %d properties, want defaults only", len(props))
			}
		})
	}
}
