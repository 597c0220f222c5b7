package prometheus

import (
	"github.com/datarhei/jobhistory/report"

	"github.com/prometheus/client_golang/prometheus"
)

// JobhistoryReader provides the results of a run.
type JobhistoryReader interface {
	// Jobs returns the number of jobs by result, e.g. reported or abandoned.
	Jobs() map[string]uint64

	// Machines returns the task duration statistics per machine.
	Machines() []report.MachineStats
}

type jobhistoryCollector struct {
	run       string
	collector JobhistoryReader

	jobsDesc     *prometheus.Desc
	tasksDesc    *prometheus.Desc
	durationDesc *prometheus.Desc
}

func NewJobhistoryCollector(run string, r JobhistoryReader) prometheus.Collector {
	return &jobhistoryCollector{
		run:       run,
		collector: r,
		jobsDesc: prometheus.NewDesc(
			"jobhistory_jobs",
			"Number of processed jobs by result",
			[]string{"run", "result"}, nil),
		tasksDesc: prometheus.NewDesc(
			"jobhistory_machine_tasks",
			"Number of reported map attempts by machine",
			[]string{"run", "machine"}, nil),
		durationDesc: prometheus.NewDesc(
			"jobhistory_task_duration_milliseconds",
			"Duration of the reported map attempts by machine",
			[]string{"run", "machine", "stat"}, nil),
	}
}

func (c *jobhistoryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.jobsDesc
	ch <- c.tasksDesc
	ch <- c.durationDesc
}

func (c *jobhistoryCollector) Collect(ch chan<- prometheus.Metric) {
	for result, n := range c.collector.Jobs() {
		ch <- prometheus.MustNewConstMetric(c.jobsDesc, prometheus.CounterValue, float64(n), c.run, result)
	}

	for _, m := range c.collector.Machines() {
		ch <- prometheus.MustNewConstMetric(c.tasksDesc, prometheus.GaugeValue, float64(m.Tasks), c.run, m.Machine)
		ch <- prometheus.MustNewConstMetric(c.durationDesc, prometheus.GaugeValue, float64(m.Total), c.run, m.Machine, "total")
		ch <- prometheus.MustNewConstMetric(c.durationDesc, prometheus.GaugeValue, float64(m.Min), c.run, m.Machine, "min")
		ch <- prometheus.MustNewConstMetric(c.durationDesc, prometheus.GaugeValue, float64(m.Max), c.run, m.Machine, "max")
		ch <- prometheus.MustNewConstMetric(c.durationDesc, prometheus.GaugeValue, m.Mean, c.run, m.Machine, "mean")
	}
}
