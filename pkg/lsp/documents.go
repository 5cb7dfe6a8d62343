package lsp

import (
	"sync"

	"github.com/spf13/afero"
	"go.lsp.dev/protocol"

	"github.com/walteh/tmls/pkg/document"
)

// DocumentManager holds the latest snapshot of every open document. Snapshots
// are replaced, never edited in place.
type DocumentManager struct {
	store *sync.Map // map[string]*document.Document
	fs    afero.Fs
}

// NewDocumentManager returns an empty store. When fs is not nil, documents the
// client never opened are read from it on first access.
func NewDocumentManager(fs afero.Fs) *DocumentManager {
	return &DocumentManager{
		store: &sync.Map{},
		fs:    fs,
	}
}

func (m *DocumentManager) Get(uri protocol.DocumentURI) (*document.Document, bool) {
	key := document.NormalizeURI(string(uri))
	if v, ok := m.store.Load(key); ok {
		return v.(*document.Document), true
	}

	if m.fs == nil {
		return nil, false
	}

	content, err := afero.ReadFile(m.fs, key)
	if err != nil {
		return nil, false
	}

	doc := document.New(key, document.KindFromPath(key), 0, string(content))
	actual, _ := m.store.LoadOrStore(key, doc)
	return actual.(*document.Document), true
}

func (m *DocumentManager) Store(doc *document.Document) {
	m.store.Store(document.NormalizeURI(doc.URI), doc)
}

func (m *DocumentManager) Delete(uri protocol.DocumentURI) {
	m.store.Delete(document.NormalizeURI(string(uri)))
}
