package fitness

import (
	"context"
)

// Report is the human-readable store status served at /test. The strings
// carry no contract.
type Report struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

const maxReportedCollections = 10

// Diagnose probes the store and reports what it finds. It never fails.
func (s *Service) Diagnose(ctx context.Context) Report {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r := Report{
		Backend:          "✅ Running",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if err := s.store.Ping(ctx); err != nil {
		r.Database = "❌ Error: " + truncate(err.Error(), 50)
	} else {
		r.Database = "✅ Available"
		r.ConnectionStatus = "Connected"
		names, err := s.store.ListCollections(ctx)
		if err != nil {
			r.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		} else {
			if len(names) > maxReportedCollections {
				names = names[:maxReportedCollections]
			}
			r.Collections = names
			r.Database = "✅ Connected & Working"
		}
	}

	r.DatabaseURL = setOrNot(s.cfg.DatabaseURL)
	r.DatabaseName = setOrNot(s.cfg.DatabaseName)
	return r
}

func setOrNot(v string) string {
	if v != "" {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
