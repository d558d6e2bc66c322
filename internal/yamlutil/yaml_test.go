package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-html2pptx/internal/yamlutil"
)

type pageSection struct {
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
}

type deckConfig struct {
	License struct {
		Key string `yaml:"key"`
	} `yaml:"license"`
	Page    pageSection `yaml:"page"`
	Workers int         `yaml:"workers"`
	Args    []string    `yaml:"args"`
}

func defaults() *deckConfig {
	c := &deckConfig{Workers: 4}
	c.Page = pageSection{Width: "338.67mm", Height: "190.5mm"}
	return c
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		check   func(*deckConfig) bool
		wantErr error
	}{
		{
			name:  "overrides only present keys",
			data:  "page:\n  width: 254mm\n",
			check: func(c *deckConfig) bool { return c.Page.Width == "254mm" && c.Page.Height == "190.5mm" && c.Workers == 4 },
		},
		{
			name:  "unknown keys ignored",
			data:  "workers: 2\nslidez: {}\n",
			check: func(c *deckConfig) bool { return c.Workers == 2 },
		},
		{
			name:  "json document",
			data:  `{"license": {"key": "ABC"}, "args": ["{input}", "{output}"]}`,
			check: func(c *deckConfig) bool { return c.License.Key == "ABC" && len(c.Args) == 2 },
		},
		{
			name:    "empty input",
			data:    "",
			wantErr: yamlutil.ErrNilData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaults()
			err := yamlutil.Unmarshal([]byte(tt.data), cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("unexpected result: %+v", cfg)
			}
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Parallel()

	if err := yamlutil.Unmarshal([]byte("a: 1"), nil); !errors.Is(err, yamlutil.ErrNilDestination) {
		t.Errorf("nil destination error = %v", err)
	}

	err := yamlutil.Unmarshal([]byte("workers: many\n"), defaults())
	if err == nil || !strings.HasPrefix(err.Error(), "yamlutil:") {
		t.Errorf("type error = %v, want yamlutil prefix", err)
	}
	if d := yamlutil.Describe(errors.Unwrap(err)); d == "" {
		t.Error("Describe() returned empty text for a decode error")
	}
	if yamlutil.Describe(nil) != "" {
		t.Error("Describe(nil) should be empty")
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	if err := yamlutil.UnmarshalStrict([]byte("workers: 2\n"), defaults()); err != nil {
		t.Errorf("known keys error = %v", err)
	}
	err := yamlutil.UnmarshalStrict([]byte("page:\n  widht: 10mm\n"), defaults())
	if err == nil {
		t.Fatal("UnmarshalStrict() accepted a misspelled key")
	}
	if !strings.Contains(yamlutil.Describe(errors.Unwrap(err)), "widht") {
		t.Errorf("error does not name the key: %v", err)
	}
}

func TestInputSizeLimit(t *testing.T) {
	t.Parallel()

	big := []byte("workers: 1\n#" + strings.Repeat("x", yamlutil.MaxInputSize))
	for name, fn := range map[string]func([]byte, any) error{
		"Unmarshal":       yamlutil.Unmarshal,
		"UnmarshalStrict": yamlutil.UnmarshalStrict,
	} {
		if err := fn(big, defaults()); !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("%s() error = %v, want ErrInputTooLarge", name, err)
		}
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	cfg := defaults()
	cfg.Args = []string{"{input}", "-o", "{output}"}
	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)
	for _, want := range []string{"page:\n  width: 338.67mm\n", "args:\n  - ", "{input}"} {
		if !strings.Contains(out, want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, out)
		}
	}

	back := &deckConfig{}
	if err := yamlutil.Unmarshal(data, back); err != nil {
		t.Fatalf("re-reading marshaled config: %v", err)
	}
	if back.Page != cfg.Page || len(back.Args) != 3 || back.Workers != 4 {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}
