package storage

// ObservedSaver reports the result of every write of the wrapped Saver.
// Placed behind an AsyncRepository it sees what the sinks actually did.
type ObservedSaver struct {
	Saver   Saver
	Observe func(error)
}

func NewObservedSaver(s Saver, observe func(error)) *ObservedSaver {
	return &ObservedSaver{Saver: s, Observe: observe}
}

func (o *ObservedSaver) Save(m interface{ ToBytes() ([]byte, error) }) error {
	err := o.Saver.Save(m)
	if o.Observe != nil {
		o.Observe(err)
	}
	return err
}
