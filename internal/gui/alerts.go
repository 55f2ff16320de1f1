package gui

// alertQueue shows modal alerts one at a time, each after the previous one
// has been dismissed. Only used from the UI goroutine.
type alertQueue struct {
	show    func(title, message string, onClosed func())
	pending []alert
	showing bool
}

type alert struct {
	title   string
	message string
}

func newAlertQueue(show func(title, message string, onClosed func())) *alertQueue {
	return &alertQueue{show: show}
}

func (q *alertQueue) push(title, message string) {
	q.pending = append(q.pending, alert{title: title, message: message})
	if !q.showing {
		q.next()
	}
}

func (q *alertQueue) next() {
	if len(q.pending) == 0 {
		q.showing = false
		return
	}

	a := q.pending[0]
	q.pending = q.pending[1:]
	q.showing = true
	q.show(a.title, a.message, q.next)
}

func (q *alertQueue) len() int {
	n := len(q.pending)
	if q.showing {
		n++
	}
	return n
}
