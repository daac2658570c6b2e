package notify

// Recorder накапливает уведомления без журналирования. Используется в тестах.
type Recorder struct {
	Items []Notification
}

// Notify сохраняет уведомление.
func (r *Recorder) Notify(n Notification) {
	r.Items = append(r.Items, n)
}

// Count возвращает число уведомлений указанного типа.
func (r *Recorder) Count(kind Kind) int {
	c := 0
	for _, n := range r.Items {
		if n.Kind == kind {
			c++
		}
	}
	return c
}
