package authoring

import (
	"sync"
)

type draftKey struct {
	sessionID string
	name      string
}

type entry struct {
	draft *Draft
	mu    sync.Mutex
}

// Workspace хранит несохраненные черновики по сессии.
// name различает черновики одной сессии: новый тест и редактируемые тесты.
type Workspace struct {
	drafts map[draftKey]*entry
	mu     sync.Mutex
}

// NewWorkspace создает пустое хранилище черновиков.
func NewWorkspace() *Workspace {
	return &Workspace{drafts: make(map[draftKey]*entry)}
}

// Edit выполняет fn над черновиком. Пока fn работает, другие вызовы
// Edit для этого черновика ждут. Если черновика нет, он создается через load.
func (w *Workspace) Edit(sessionID, name string, load func() (*Draft, error), fn func(d *Draft) error) error {
	key := draftKey{sessionID: sessionID, name: name}

	w.mu.Lock()
	e, ok := w.drafts[key]
	if !ok {
		e = &entry{}
		w.drafts[key] = e
	}
	w.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		d, err := load()
		if err != nil {
			w.forget(key, e)
			return err
		}
		e.draft = d
	}

	return fn(e.draft)
}

// Has сообщает, есть ли у сессии черновик name.
func (w *Workspace) Has(sessionID, name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.drafts[draftKey{sessionID: sessionID, name: name}]
	return ok
}

// Discard удаляет черновик.
func (w *Workspace) Discard(sessionID, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.drafts, draftKey{sessionID: sessionID, name: name})
}

// Drop удаляет все черновики сессии.
func (w *Workspace) Drop(sessionID string) {
	w.Leave(sessionID, "")
}

// Leave удаляет черновики сессии, кроме черновика keep.
func (w *Workspace) Leave(sessionID, keep string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for key := range w.drafts {
		if key.sessionID == sessionID && key.name != keep {
			delete(w.drafts, key)
		}
	}
}

// Len возвращает количество черновиков.
func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.drafts)
}

func (w *Workspace) forget(key draftKey, e *entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.drafts[key] == e {
		delete(w.drafts, key)
	}
}
