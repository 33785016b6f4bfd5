package report

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xraph/billing/types"
)

// TopServicesLimit caps the ranking in ServiceMetrics.TopServices.
const TopServicesLimit = 5

// ServiceStats aggregates one service across invoices. Revenue assumes an
// invoice amount is spread evenly over its services.
type ServiceStats struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	UsageCount     int             `json:"usage_count"`
	Clients        []string        `json:"clients"`
	AverageRevenue decimal.Decimal `json:"average_revenue"`
}

// RankedService is one entry of the top services ranking.
type RankedService struct {
	Service string `json:"service"`
	ServiceStats
}

// ServiceMetrics summarizes invoices created in the window per service.
type ServiceMetrics struct {
	ServiceMetrics map[string]*ServiceStats `json:"service_metrics"`
	TopServices    []RankedService          `json:"top_services"`
}

// ReportType implements Data.
func (*ServiceMetrics) ReportType() Type { return TypeServiceMetrics }

// Services returns service names sorted alphabetically.
func (s *ServiceMetrics) Services() []string {
	names := make([]string, 0, len(s.ServiceMetrics))
	for name := range s.ServiceMetrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (g *Generator) serviceMetrics(ctx context.Context, period Period) (*ServiceMetrics, error) {
	stats := make(map[string]*ServiceStats)
	var order []string

	for inv, err := range g.src.ScanInvoices(ctx) {
		if err != nil {
			return nil, fmt.Errorf("report: scan invoices: %w", err)
		}
		if !period.Contains(inv.CreatedAt) || len(inv.Services) == 0 {
			continue
		}

		share := types.SplitEvenly(inv.Amount, len(inv.Services))
		for _, name := range inv.Services {
			s, ok := stats[name]
			if !ok {
				s = &ServiceStats{TotalRevenue: decimal.Zero, Clients: []string{}}
				stats[name] = s
				order = append(order, name)
			}
			s.TotalRevenue = s.TotalRevenue.Add(share)
			s.UsageCount++
			if !slices.Contains(s.Clients, inv.ClientName) {
				s.Clients = append(s.Clients, inv.ClientName)
			}
		}
	}

	ranked := make([]RankedService, 0, len(order))
	for _, name := range order {
		s := stats[name]
		s.AverageRevenue = types.Mean(s.TotalRevenue, s.UsageCount)
		ranked = append(ranked, RankedService{Service: name, ServiceStats: *s})
	}
	slices.SortStableFunc(ranked, func(a, b RankedService) int {
		return b.TotalRevenue.Cmp(a.TotalRevenue)
	})
	if len(ranked) > TopServicesLimit {
		ranked = ranked[:TopServicesLimit]
	}

	return &ServiceMetrics{
		ServiceMetrics: stats,
		TopServices:    ranked,
	}, nil
}
