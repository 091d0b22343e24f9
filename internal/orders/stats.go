package orders

type Stats struct {
	Total      int `json:"total"`
	Received   int `json:"received"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
}

// ComputeStats counts a loaded order set. Legacy statuses add to Total only.
func ComputeStats(orders []Order) Stats {
	st := Stats{Total: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case StatusReceived:
			st.Received++
		case StatusInProgress:
			st.InProgress++
		case StatusCompleted:
			st.Completed++
		}
	}
	return st
}
