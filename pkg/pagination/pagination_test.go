package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"zero values get defaults", 0, 0, DefaultPage, DefaultLimit},
		{"negative values get defaults", -3, -1, DefaultPage, DefaultLimit},
		{"valid values pass through", 4, 50, 4, 50},
		{"limit is capped", 1, 5000, 1, MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := Normalize(tc.page, tc.limit)
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Fatalf("Normalize(%d, %d) = (%d, %d), want (%d, %d)",
					tc.page, tc.limit, page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}
