package snapshot

import "testing"

func TestKey(t *testing.T) {
	tests := []struct {
		name      string
		key       Key
		wantItems string
		wantMeta  string
		wantStage string
	}{
		{
			name:      "default name",
			key:       Key{},
			wantItems: "kindle:snapshot:default:items",
			wantMeta:  "kindle:snapshot:default:meta",
			wantStage: "kindle:snapshot:default:items:pending",
		},
		{
			name:      "named",
			key:       Key{Name: "uk"},
			wantItems: "kindle:snapshot:uk:items",
			wantMeta:  "kindle:snapshot:uk:meta",
			wantStage: "kindle:snapshot:uk:items:pending",
		},
		{
			name:      "whitespace name",
			key:       Key{Name: "  "},
			wantItems: "kindle:snapshot:default:items",
			wantMeta:  "kindle:snapshot:default:meta",
			wantStage: "kindle:snapshot:default:items:pending",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Items(); got != tt.wantItems {
				t.Errorf("Items() = %q, want %q", got, tt.wantItems)
			}
			if got := tt.key.Meta(); got != tt.wantMeta {
				t.Errorf("Meta() = %q, want %q", got, tt.wantMeta)
			}
			if got := tt.key.Pending(); got != tt.wantStage {
				t.Errorf("Pending() = %q, want %q", got, tt.wantStage)
			}
		})
	}
}
