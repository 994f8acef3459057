package procedure

import "sort"

const topModels = 5

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v != nil {
		m.sum += *v
		m.n++
	}
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// ComputeStatistics aggregates procs. The average duration is taken over
// every procedure, counting unparsable times as zero; echo averages only
// over the procedures that carry the value. Anything not balloon
// expandable counts as self expandable.
func ComputeStatistics(procs []*Procedure) *Statistics {
	st := &Statistics{Total: len(procs), TopValveModels: []TopModel{}}
	if len(procs) == 0 {
		return st
	}

	var duration, pre, post int
	var ef, vmax, gmax, gmed, ava mean
	models := make(map[string]int)

	for _, p := range procs {
		if d, ok := p.DurationMinutes(); ok {
			duration += d
		}
		if p.PreDilatation {
			pre++
		}
		if p.PostDilatation {
			post++
		}
		if p.ValveType == BalloonExpandable {
			st.BalloonExpandableCount++
		} else {
			st.SelfExpandableCount++
		}
		ef.add(p.EF)
		vmax.add(p.Vmax)
		gmax.add(p.Gmax)
		gmed.add(p.Gmed)
		ava.add(p.AVA)
		models[p.ValveModel]++
	}

	total := float64(len(procs))
	st.AverageDuration = float64(duration) / total
	st.PreDilatationPercent = float64(pre) / total * 100
	st.PostDilatationPercent = float64(post) / total * 100
	st.AverageEF = ef.value()
	st.AverageVmax = vmax.value()
	st.AverageGmax = gmax.value()
	st.AverageGmed = gmed.value()
	st.AverageAVA = ava.value()

	for m, n := range models {
		st.TopValveModels = append(st.TopValveModels, TopModel{Model: m, Count: n})
	}
	sort.Slice(st.TopValveModels, func(i, j int) bool {
		a, b := st.TopValveModels[i], st.TopValveModels[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Model < b.Model
	})
	if len(st.TopValveModels) > topModels {
		st.TopValveModels = st.TopValveModels[:topModels]
	}
	return st
}
