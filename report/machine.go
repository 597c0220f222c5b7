package report

import "strconv"

// MachineHeader are the column names of the machine statistics.
var MachineHeader = []string{
	"machineName",
	"tasks",
	"totalTime",
	"minTime",
	"maxTime",
	"meanTime",
}

// MachineStats are the durations of all map attempts that ran on one machine.
type MachineStats struct {
	Machine string  `json:"machine"`
	Tasks   int     `json:"tasks"`
	Total   int64   `json:"total_ms"`
	Min     int64   `json:"min_ms"`
	Max     int64   `json:"max_ms"`
	Mean    float64 `json:"mean_ms"`
}

func (m MachineStats) Values() []string {
	return []string{
		m.Machine,
		strconv.Itoa(m.Tasks),
		strconv.FormatInt(m.Total, 10),
		strconv.FormatInt(m.Min, 10),
		strconv.FormatInt(m.Max, 10),
		strconv.FormatFloat(m.Mean, 'f', 2, 64),
	}
}

// Machines groups the rows by machine. The machines are in the order of
// their first appearance in rows.
func Machines(rows []Row) []MachineStats {
	index := map[string]int{}
	stats := []MachineStats{}

	for _, r := range rows {
		i, ok := index[r.Machine]
		if !ok {
			i = len(stats)
			index[r.Machine] = i
			stats = append(stats, MachineStats{
				Machine: r.Machine,
				Min:     r.Duration,
				Max:     r.Duration,
			})
		}

		s := &stats[i]

		s.Tasks++
		s.Total += r.Duration

		if r.Duration < s.Min {
			s.Min = r.Duration
		}

		if r.Duration > s.Max {
			s.Max = r.Duration
		}
	}

	for i := range stats {
		stats[i].Mean = float64(stats[i].Total) / float64(stats[i].Tasks)
	}

	return stats
}
