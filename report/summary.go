package report

import (
	"strconv"

	"github.com/xraph/billing/types"
)

// Metric is one labelled headline figure of a report.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary returns the headline figures of r in display order.
func (r *Report) Summary() []Metric {
	switch d := r.Data.(type) {
	case *Revenue:
		return []Metric{
			{"Total Revenue", types.FormatAmount(d.TotalRevenue)},
			{"Paid Invoices", strconv.Itoa(d.PaidInvoicesCount)},
			{"Average Monthly Revenue", types.FormatAmount(d.AverageMonthlyRevenue)},
		}
	case *Outstanding:
		return []Metric{
			{"Total Outstanding", types.FormatAmount(d.TotalOutstanding)},
			{"Outstanding Invoices", strconv.Itoa(d.OutstandingCount)},
			{"0-30 Days", types.FormatAmount(d.AgingAnalysis.Days30)},
			{"31-60 Days", types.FormatAmount(d.AgingAnalysis.Days60)},
			{"61-90 Days", types.FormatAmount(d.AgingAnalysis.Days90)},
			{"90+ Days", types.FormatAmount(d.AgingAnalysis.Days90Plus)},
		}
	case *ClientAnalysis:
		return []Metric{
			{"Active Clients", strconv.Itoa(d.TotalActiveClients)},
			{"Average Client Spend", types.FormatAmount(d.AverageClientSpend)},
		}
	case *ServiceMetrics:
		out := []Metric{{"Services", strconv.Itoa(len(d.ServiceMetrics))}}
		for i, s := range d.TopServices {
			out = append(out, Metric{
				Label: "#" + strconv.Itoa(i+1) + " " + s.Service,
				Value: types.FormatAmount(s.TotalRevenue),
			})
		}
		return out
	case *PaymentTrends:
		return []Metric{
			{"Active Days", strconv.Itoa(len(d.DailyVolumes))},
			{"Payment Methods", strconv.Itoa(len(d.PaymentMethods))},
			{"Average Payment Size", types.FormatAmount(d.AveragePaymentSize)},
		}
	}
	return nil
}
