// Package audit records the outcome of unsupervised sync operations. Components
// performing remote work without a confirming operator publish every decision
// through an Observer; the database-backed store is the one sink registered in
// production and its rows are the only audit trail those channels have.
package audit

// Observer receives the outcome of a sync decision. resultCode must be one of
// the four codes in the models package.
type Observer interface {
	Update(eventTrigger, eventType, identifier, message, resultCode string)
}

// Publisher holds the observers of a component that performs unsupervised
// operations. Embed it and call NotifyObservers at every decision point.
type Publisher struct {
	observers []Observer
}

func (p *Publisher) AddObserver(o Observer) {
	p.observers = append(p.observers, o)
}

func (p *Publisher) NotifyObservers(eventTrigger, eventType, identifier, message, resultCode string) {
	for _, o := range p.observers {
		o.Update(eventTrigger, eventType, identifier, message, resultCode)
	}
}
