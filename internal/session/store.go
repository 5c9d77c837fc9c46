// Package session owns the process-wide analysis session: the uploaded
// file, the parsed and working datasets, the variable classification and
// the analysis results. All mutation goes through named setters guarded by
// a RWMutex; every setter marks the session dirty and notifies subscribers.
//
// Concurrent writers are not serialized beyond the mutex: two stages
// writing the same slice race with last-write-wins. Each slice of the
// session is written independently so concurrent stages touching different
// slices cannot corrupt each other.
package session

import (
	"sync"

	"tableone/internal/dataset"
	"tableone/pkg/contracts/domain"
)

// FileMeta describes the uploaded file.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Snapshot is an immutable view of the session handed to subscribers and
// the HTTP surface.
type Snapshot struct {
	File             *FileMeta                     `json:"file,omitempty"`
	RowCount         int                           `json:"row_count"`
	ColumnCount      int                           `json:"column_count"`
	Classification   domain.VariableClassification `json:"classification"`
	FillNA           bool                          `json:"fill_na"`
	ImputationMethod domain.ImputationMethod       `json:"imputation_method"`
	AutoMode         bool                          `json:"auto_mode"`
	AIModel          string                        `json:"ai_model"`
	HasResult        bool                          `json:"has_result"`
	GroupCounts      domain.GroupCounts            `json:"group_counts,omitempty"`
	ProcessingLog    []domain.ProcessingLogEntry   `json:"processing_log,omitempty"`
	Dirty            bool                          `json:"dirty"`
}

// Subscriber receives a snapshot after each mutation.
type Subscriber func(Snapshot)

// Store holds the single analysis session.
type Store struct {
	mu sync.RWMutex

	file             *FileMeta
	parsedData       *dataset.Dataset
	workingData      *dataset.Dataset
	classification   domain.VariableClassification
	fillNA           bool
	imputationMethod domain.ImputationMethod
	columnProfiles   []domain.ColumnProfile
	resultTable      []domain.TableRow
	groupCounts      domain.GroupCounts
	autoResult       *domain.AutoAnalysisResult
	autoMode         bool
	aiModel          string
	processingLog    []domain.ProcessingLogEntry
	dirty            bool

	subMu       sync.Mutex
	subscribers []Subscriber
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Subscribe registers a callback invoked after every mutation. The callback
// runs synchronously with the snapshot taken under the read lock; keep it
// cheap.
func (s *Store) Subscribe(fn Subscriber) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) notify() {
	snap := s.GetSnapshot()
	s.subMu.Lock()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// SetFile records the uploaded file metadata.
func (s *Store) SetFile(meta FileMeta) {
	s.mu.Lock()
	s.file = &meta
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetParsedData stores the freshly parsed dataset and resets the working
// dataset to it.
func (s *Store) SetParsedData(ds *dataset.Dataset) {
	s.mu.Lock()
	s.parsedData = ds
	s.workingData = ds
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetWorkingData replaces the working dataset, normally after successful
// imputation. The parsed original is untouched.
func (s *Store) SetWorkingData(ds *dataset.Dataset) {
	s.mu.Lock()
	s.workingData = ds
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetGroupVar selects the grouping column, removing it from the
// categorical and continuous sets to keep the role sets disjoint.
func (s *Store) SetGroupVar(col string) {
	s.mu.Lock()
	s.classification.GroupVar = col
	s.classification.CatVars = remove(s.classification.CatVars, col)
	s.classification.ContVars = remove(s.classification.ContVars, col)
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetClassification replaces the whole classification. The group variable
// is stripped from the categorical/continuous sets to preserve the
// disjointness invariant regardless of caller input.
func (s *Store) SetClassification(c domain.VariableClassification) {
	s.mu.Lock()
	if c.GroupVar != "" {
		c.CatVars = remove(c.CatVars, c.GroupVar)
		c.ContVars = remove(c.ContVars, c.GroupVar)
	}
	s.classification = c
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetFillNA toggles the imputation flag and method.
func (s *Store) SetFillNA(enabled bool, method domain.ImputationMethod) {
	s.mu.Lock()
	s.fillNA = enabled
	s.imputationMethod = method
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetColumnProfiles stores the per-column profiling result.
func (s *Store) SetColumnProfiles(profiles []domain.ColumnProfile) {
	s.mu.Lock()
	s.columnProfiles = profiles
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetResult stores the analysis result table and group counts.
func (s *Store) SetResult(table []domain.TableRow, counts domain.GroupCounts) {
	s.mu.Lock()
	s.resultTable = table
	s.groupCounts = counts
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetAutoResult stores the auto-analysis outcome.
func (s *Store) SetAutoResult(result *domain.AutoAnalysisResult) {
	s.mu.Lock()
	s.autoResult = result
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// SetAutoMode selects automatic classification and the model driving it.
func (s *Store) SetAutoMode(enabled bool, aiModel string) {
	s.mu.Lock()
	s.autoMode = enabled
	s.aiModel = aiModel
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// AppendProcessingLog records one imputation action.
func (s *Store) AppendProcessingLog(entries ...domain.ProcessingLogEntry) {
	s.mu.Lock()
	s.processingLog = append(s.processingLog, entries...)
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// MarkClean clears the dirty flag, e.g. after a successful state export.
func (s *Store) MarkClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	s.notify()
}

// ResetAll clears everything back to the empty session.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.file = nil
	s.parsedData = nil
	s.workingData = nil
	s.classification = domain.VariableClassification{}
	s.fillNA = false
	s.imputationMethod = ""
	s.columnProfiles = nil
	s.resultTable = nil
	s.groupCounts = nil
	s.autoResult = nil
	s.autoMode = false
	s.aiModel = ""
	s.processingLog = nil
	s.dirty = false
	s.mu.Unlock()
	s.notify()
}

// ResetForNewAnalysis keeps the uploaded file and parsed data but clears
// the classification, results and processing log.
func (s *Store) ResetForNewAnalysis() {
	s.mu.Lock()
	s.workingData = s.parsedData
	s.classification = domain.VariableClassification{}
	s.fillNA = false
	s.imputationMethod = ""
	s.resultTable = nil
	s.groupCounts = nil
	s.autoResult = nil
	s.processingLog = nil
	s.dirty = true
	s.mu.Unlock()
	s.notify()
}

// Accessors. All return copies or immutable values read under RLock.

func (s *Store) File() *FileMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.file == nil {
		return nil
	}
	f := *s.file
	return &f
}

func (s *Store) ParsedData() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parsedData
}

func (s *Store) WorkingData() *dataset.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingData
}

func (s *Store) Classification() domain.VariableClassification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyClassification(s.classification)
}

func (s *Store) FillNA() (bool, domain.ImputationMethod) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fillNA, s.imputationMethod
}

func (s *Store) ColumnProfiles() []domain.ColumnProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ColumnProfile(nil), s.columnProfiles...)
}

func (s *Store) Result() ([]domain.TableRow, domain.GroupCounts) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(domain.GroupCounts, len(s.groupCounts))
	for k, v := range s.groupCounts {
		counts[k] = v
	}
	return append([]domain.TableRow(nil), s.resultTable...), counts
}

func (s *Store) AutoResult() *domain.AutoAnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.autoResult == nil {
		return nil
	}
	r := *s.autoResult
	return &r
}

func (s *Store) AutoMode() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoMode, s.aiModel
}

func (s *Store) ProcessingLog() []domain.ProcessingLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ProcessingLogEntry(nil), s.processingLog...)
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// GetSnapshot builds the subscriber/HTTP view under the read lock.
func (s *Store) GetSnapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Classification:   copyClassification(s.classification),
		FillNA:           s.fillNA,
		ImputationMethod: s.imputationMethod,
		AutoMode:         s.autoMode,
		AIModel:          s.aiModel,
		HasResult:        s.resultTable != nil,
		ProcessingLog:    append([]domain.ProcessingLogEntry(nil), s.processingLog...),
		Dirty:            s.dirty,
	}
	if s.file != nil {
		f := *s.file
		snap.File = &f
	}
	if s.workingData != nil {
		snap.RowCount = len(s.workingData.Rows)
		snap.ColumnCount = len(s.workingData.Columns)
	}
	if len(s.groupCounts) > 0 {
		snap.GroupCounts = make(domain.GroupCounts, len(s.groupCounts))
		for k, v := range s.groupCounts {
			snap.GroupCounts[k] = v
		}
	}
	return snap
}

func copyClassification(c domain.VariableClassification) domain.VariableClassification {
	return domain.VariableClassification{
		GroupVar:     c.GroupVar,
		CatVars:      append([]string(nil), c.CatVars...),
		ContVars:     append([]string(nil), c.ContVars...),
		ExcludedVars: append([]string(nil), c.ExcludedVars...),
	}
}

func remove(list []string, item string) []string {
	if item == "" {
		return list
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}
