package braintest

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Brain version states reported by the fixture.
const (
	StateIdle      = "Idle"
	StateTraining  = "Training"
	StateAssessing = "Assessing"
)

// Brain is a stored brain record.
type Brain struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	CreatedOn   string `json:"createdOn"`
	ModifiedOn  string `json:"modifiedOn"`
}

// BrainVersion is a stored brain version record.
type BrainVersion struct {
	Version     int    `json:"version"`
	State       string `json:"state"`
	Description string `json:"description"`
	Inkling     string `json:"inkling"`
	CreatedOn   string `json:"createdOn"`
	ModifiedOn  string `json:"modifiedOn"`
}

// ExportedBrain is a stored exported brain record.
type ExportedBrain struct {
	Name                  string `json:"name"`
	Subscription          string `json:"subscription"`
	ResourceGroup         string `json:"resourceGroup"`
	ProcessorArchitecture string `json:"processorArchitecture"`
	BrainName             string `json:"brainName"`
	BrainVersion          int    `json:"brainVersion"`
	DisplayName           string `json:"displayName"`
	Description           string `json:"description"`
	State                 string `json:"state"`
}

// BaseImage is a stored simulator base image record.
type BaseImage struct {
	ImageIdentifier string  `json:"imageIdentifier"`
	OSType          string  `json:"osType"`
	Cores           float64 `json:"cores"`
	MemInGB         float64 `json:"memInGB"`
}

// SimulatorSession is a stored simulator session record.
type SimulatorSession struct {
	SessionID        string           `json:"sessionId"`
	SimulatorName    string           `json:"simulatorName"`
	DeploymentMode   string           `json:"deploymentMode"`
	SimulatorContext SimulatorContext `json:"simulatorContext"`
}

// SimulatorContext carries the session's purpose assignment.
type SimulatorContext struct {
	Purpose SessionPurpose `json:"purpose"`
}

// SessionPurpose binds a session to a brain version concept.
type SessionPurpose struct {
	Action string        `json:"action"`
	Target PurposeTarget `json:"target"`
}

// PurposeTarget names the brain version concept a session serves. The
// version is kept as whatever JSON type it arrived as; the service reports
// it both as a string and as a number depending on the writer.
type PurposeTarget struct {
	WorkspaceName string `json:"workspaceName"`
	BrainName     string `json:"brainName"`
	BrainVersion  any    `json:"brainVersion"`
	ConceptName   string `json:"conceptName"`
}

// brainEntry pairs a brain record with its versions.
type brainEntry struct {
	record      Brain
	versions    map[int]*BrainVersion
	nextVersion int
}

// packageEntry pairs a simulator package record with its collections.
// Package and collection records are stored as the raw payload maps the
// client sent; the fixture never interprets their scaling fields.
type packageEntry struct {
	record      map[string]any
	collections map[string]map[string]any
}

// workspace holds the resource catalogs for one workspace name.
type workspace struct {
	brains     map[string]*brainEntry
	packages   map[string]*packageEntry
	baseImages map[string]BaseImage
	exported   map[string]*ExportedBrain
	sessions   map[string]*SimulatorSession
}

func newWorkspace() *workspace {
	return &workspace{
		brains:     make(map[string]*brainEntry),
		packages:   make(map[string]*packageEntry),
		baseImages: make(map[string]BaseImage),
		exported:   make(map[string]*ExportedBrain),
		sessions:   make(map[string]*SimulatorSession),
	}
}

// Store holds the fixture's in-memory resource catalogs. Workspaces come
// into being on first write; reads against an unknown workspace see empty
// catalogs. All methods are safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*workspace
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		workspaces: make(map[string]*workspace),
		now:        time.Now,
	}
}

// workspace returns the catalog for name, creating it if missing. Callers
// must hold the write lock.
func (s *Store) workspace(name string) *workspace {
	ws, ok := s.workspaces[name]
	if !ok {
		ws = newWorkspace()
		s.workspaces[name] = ws
	}

	return ws
}

// lookup returns the catalog for name without creating it. Callers must
// hold at least the read lock.
func (s *Store) lookup(name string) (*workspace, bool) {
	ws, ok := s.workspaces[name]
	return ws, ok
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// CreateBrain stores a new brain and seeds its first version.
func (s *Store) CreateBrain(workspaceName string, brain Brain) (Brain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.workspace(workspaceName)
	if _, ok := ws.brains[brain.Name]; ok {
		return Brain{}, conflict("brain", brain.Name)
	}

	now := s.stamp()
	brain.CreatedOn = now
	brain.ModifiedOn = now

	ws.brains[brain.Name] = &brainEntry{
		record: brain,
		versions: map[int]*BrainVersion{
			1: {Version: 1, State: StateIdle, CreatedOn: now, ModifiedOn: now},
		},
		nextVersion: 2,
	}

	return brain, nil
}

// Brains lists the brains of a workspace sorted by name.
func (s *Store) Brains(workspaceName string) []Brain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return []Brain{}
	}

	brains := make([]Brain, 0, len(ws.brains))
	for _, entry := range ws.brains {
		brains = append(brains, entry.record)
	}

	sort.Slice(brains, func(i, j int) bool { return brains[i].Name < brains[j].Name })

	return brains
}

// Brain returns one brain record.
func (s *Store) Brain(workspaceName, name string) (Brain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.brain(workspaceName, name)
	if err != nil {
		return Brain{}, err
	}

	return entry.record, nil
}

// brain resolves a brain entry. Callers must hold a lock.
func (s *Store) brain(workspaceName, name string) (*brainEntry, error) {
	ws, ok := s.lookup(workspaceName)
	if !ok {
		return nil, notFound("brain", name)
	}

	entry, ok := ws.brains[name]
	if !ok {
		return nil, notFound("brain", name)
	}

	return entry, nil
}

// UpdateBrain overwrites the mutable brain fields.
func (s *Store) UpdateBrain(workspaceName, name, displayName, description string) (Brain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.brain(workspaceName, name)
	if err != nil {
		return Brain{}, err
	}

	entry.record.DisplayName = displayName
	entry.record.Description = description
	entry.record.ModifiedOn = s.stamp()

	return entry.record, nil
}

// DeleteBrain removes a brain and all of its versions.
func (s *Store) DeleteBrain(workspaceName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.brain(workspaceName, name); err != nil {
		return err
	}

	delete(s.workspaces[workspaceName].brains, name)

	return nil
}

// CreateBrainVersion copies a source version into the next version number.
func (s *Store) CreateBrainVersion(workspaceName, brainName string, sourceVersion int, description string) (BrainVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.brain(workspaceName, brainName)
	if err != nil {
		return BrainVersion{}, err
	}

	source, ok := entry.versions[sourceVersion]
	if !ok {
		return BrainVersion{}, notFound("version", strconv.Itoa(sourceVersion))
	}

	now := s.stamp()
	version := &BrainVersion{
		Version:     entry.nextVersion,
		State:       StateIdle,
		Description: description,
		Inkling:     source.Inkling,
		CreatedOn:   now,
		ModifiedOn:  now,
	}

	entry.versions[version.Version] = version
	entry.nextVersion++

	return *version, nil
}

// BrainVersions lists the versions of a brain in ascending order.
func (s *Store) BrainVersions(workspaceName, brainName string) ([]BrainVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.brain(workspaceName, brainName)
	if err != nil {
		return nil, err
	}

	versions := make([]BrainVersion, 0, len(entry.versions))
	for _, v := range entry.versions {
		versions = append(versions, *v)
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Version < versions[j].Version })

	return versions, nil
}

// BrainVersion returns one version record.
func (s *Store) BrainVersion(workspaceName, brainName string, version int) (BrainVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.brain(workspaceName, brainName)
	if err != nil {
		return BrainVersion{}, err
	}

	v, ok := entry.versions[version]
	if !ok {
		return BrainVersion{}, notFound("version", strconv.Itoa(version))
	}

	return *v, nil
}

// UpdateBrainVersion applies mutate to a version record under the lock and
// returns the result. All version writes, details and inkling updates as
// well as training state transitions, go through here.
func (s *Store) UpdateBrainVersion(workspaceName, brainName string, version int, mutate func(*BrainVersion)) (BrainVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.brain(workspaceName, brainName)
	if err != nil {
		return BrainVersion{}, err
	}

	v, ok := entry.versions[version]
	if !ok {
		return BrainVersion{}, notFound("version", strconv.Itoa(version))
	}

	mutate(v)
	v.ModifiedOn = s.stamp()

	return *v, nil
}

// DeleteBrainVersion removes one version record.
func (s *Store) DeleteBrainVersion(workspaceName, brainName string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.brain(workspaceName, brainName)
	if err != nil {
		return err
	}

	if _, ok := entry.versions[version]; !ok {
		return notFound("version", strconv.Itoa(version))
	}

	delete(entry.versions, version)

	return nil
}

// CreateSimulatorPackage stores a package record under name.
func (s *Store) CreateSimulatorPackage(workspaceName, name string, record map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.workspace(workspaceName)
	if _, ok := ws.packages[name]; ok {
		return nil, conflict("simulator package", name)
	}

	record = cloneRecord(record)
	record["name"] = name
	record["createdOn"] = s.stamp()

	ws.packages[name] = &packageEntry{
		record:      record,
		collections: make(map[string]map[string]any),
	}

	return cloneRecord(record), nil
}

// SimulatorPackages lists the package records of a workspace sorted by name.
func (s *Store) SimulatorPackages(workspaceName string) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return []map[string]any{}
	}

	names := make([]string, 0, len(ws.packages))
	for name := range ws.packages {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]map[string]any, 0, len(names))
	for _, name := range names {
		records = append(records, cloneRecord(ws.packages[name].record))
	}

	return records
}

// SimulatorPackage returns one package record.
func (s *Store) SimulatorPackage(workspaceName, name string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.simulatorPackage(workspaceName, name)
	if err != nil {
		return nil, err
	}

	return cloneRecord(entry.record), nil
}

// simulatorPackage resolves a package entry. Callers must hold a lock.
func (s *Store) simulatorPackage(workspaceName, name string) (*packageEntry, error) {
	ws, ok := s.lookup(workspaceName)
	if !ok {
		return nil, notFound("simulator package", name)
	}

	entry, ok := ws.packages[name]
	if !ok {
		return nil, notFound("simulator package", name)
	}

	return entry, nil
}

// UpdateSimulatorPackage merges patch into an existing package record.
func (s *Store) UpdateSimulatorPackage(workspaceName, name string, patch map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.simulatorPackage(workspaceName, name)
	if err != nil {
		return nil, err
	}

	for key, value := range patch {
		entry.record[key] = value
	}

	return cloneRecord(entry.record), nil
}

// DeleteSimulatorPackage removes a package and its collections.
func (s *Store) DeleteSimulatorPackage(workspaceName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.simulatorPackage(workspaceName, name); err != nil {
		return err
	}

	delete(s.workspaces[workspaceName].packages, name)

	return nil
}

// CreateSimulatorCollection stores a collection record under a fresh id.
func (s *Store) CreateSimulatorCollection(workspaceName, packageName string, record map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.simulatorPackage(workspaceName, packageName)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()

	record = cloneRecord(record)
	record["collectionId"] = id
	record["createdOn"] = s.stamp()

	entry.collections[id] = record

	return cloneRecord(record), nil
}

// SimulatorCollections lists the collection records of a package.
func (s *Store) SimulatorCollections(workspaceName, packageName string) ([]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.simulatorPackage(workspaceName, packageName)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entry.collections))
	for id := range entry.collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		records = append(records, cloneRecord(entry.collections[id]))
	}

	return records, nil
}

// SimulatorCollection returns one collection record.
func (s *Store) SimulatorCollection(workspaceName, packageName, collectionID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, err := s.simulatorPackage(workspaceName, packageName)
	if err != nil {
		return nil, err
	}

	record, ok := entry.collections[collectionID]
	if !ok {
		return nil, notFound("simulator collection", collectionID)
	}

	return cloneRecord(record), nil
}

// UpdateSimulatorCollection merges patch into an existing collection record.
func (s *Store) UpdateSimulatorCollection(workspaceName, packageName, collectionID string, patch map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.simulatorPackage(workspaceName, packageName)
	if err != nil {
		return nil, err
	}

	record, ok := entry.collections[collectionID]
	if !ok {
		return nil, notFound("simulator collection", collectionID)
	}

	for key, value := range patch {
		record[key] = value
	}

	return cloneRecord(record), nil
}

// DeleteSimulatorCollection removes one collection record.
func (s *Store) DeleteSimulatorCollection(workspaceName, packageName, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.simulatorPackage(workspaceName, packageName)
	if err != nil {
		return err
	}

	if _, ok := entry.collections[collectionID]; !ok {
		return notFound("simulator collection", collectionID)
	}

	delete(entry.collections, collectionID)

	return nil
}

// AddBaseImage seeds a simulator base image.
func (s *Store) AddBaseImage(workspaceName string, image BaseImage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspace(workspaceName).baseImages[image.ImageIdentifier] = image
}

// BaseImages lists the base images of a workspace sorted by identifier.
func (s *Store) BaseImages(workspaceName string) []BaseImage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return []BaseImage{}
	}

	images := make([]BaseImage, 0, len(ws.baseImages))
	for _, image := range ws.baseImages {
		images = append(images, image)
	}

	sort.Slice(images, func(i, j int) bool { return images[i].ImageIdentifier < images[j].ImageIdentifier })

	return images
}

// BaseImage returns one base image record.
func (s *Store) BaseImage(workspaceName, imageID string) (BaseImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return BaseImage{}, notFound("base image", imageID)
	}

	image, ok := ws.baseImages[imageID]
	if !ok {
		return BaseImage{}, notFound("base image", imageID)
	}

	return image, nil
}

// CreateExportedBrain stores an exported brain after checking that the
// source brain version exists.
func (s *Store) CreateExportedBrain(workspaceName string, exported ExportedBrain) (ExportedBrain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.brain(workspaceName, exported.BrainName)
	if err != nil {
		return ExportedBrain{}, err
	}

	if _, ok := entry.versions[exported.BrainVersion]; !ok {
		return ExportedBrain{}, notFound("version", strconv.Itoa(exported.BrainVersion))
	}

	ws := s.workspace(workspaceName)
	if _, ok := ws.exported[exported.Name]; ok {
		return ExportedBrain{}, conflict("exported brain", exported.Name)
	}

	exported.State = "Succeeded"
	ws.exported[exported.Name] = &exported

	return exported, nil
}

// ExportedBrains lists the exported brains of a workspace sorted by name.
func (s *Store) ExportedBrains(workspaceName string) []ExportedBrain {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return []ExportedBrain{}
	}

	exported := make([]ExportedBrain, 0, len(ws.exported))
	for _, e := range ws.exported {
		exported = append(exported, *e)
	}

	sort.Slice(exported, func(i, j int) bool { return exported[i].Name < exported[j].Name })

	return exported
}

// ExportedBrain returns one exported brain record.
func (s *Store) ExportedBrain(workspaceName, name string) (ExportedBrain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := s.exportedBrain(workspaceName, name)
	if err != nil {
		return ExportedBrain{}, err
	}

	return *e, nil
}

// exportedBrain resolves an exported brain entry. Callers must hold a lock.
func (s *Store) exportedBrain(workspaceName, name string) (*ExportedBrain, error) {
	ws, ok := s.lookup(workspaceName)
	if !ok {
		return nil, notFound("exported brain", name)
	}

	e, ok := ws.exported[name]
	if !ok {
		return nil, notFound("exported brain", name)
	}

	return e, nil
}

// UpdateExportedBrain overwrites the mutable exported brain fields.
func (s *Store) UpdateExportedBrain(workspaceName, name, displayName, description string) (ExportedBrain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.exportedBrain(workspaceName, name)
	if err != nil {
		return ExportedBrain{}, err
	}

	e.DisplayName = displayName
	e.Description = description

	return *e, nil
}

// DeleteExportedBrain removes one exported brain record.
func (s *Store) DeleteExportedBrain(workspaceName, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.exportedBrain(workspaceName, name); err != nil {
		return err
	}

	delete(s.workspaces[workspaceName].exported, name)

	return nil
}

// AddSession seeds a simulator session, generating an id when the seed
// carries none.
func (s *Store) AddSession(workspaceName string, session SimulatorSession) SimulatorSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}

	s.workspace(workspaceName).sessions[session.SessionID] = &session

	return session
}

// Sessions lists the simulator sessions of a workspace sorted by id.
func (s *Store) Sessions(workspaceName string) []SimulatorSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return []SimulatorSession{}
	}

	sessions := make([]SimulatorSession, 0, len(ws.sessions))
	for _, session := range ws.sessions {
		sessions = append(sessions, *session)
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].SessionID < sessions[j].SessionID })

	return sessions
}

// Session returns one simulator session record.
func (s *Store) Session(workspaceName, sessionID string) (SimulatorSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return SimulatorSession{}, notFound("simulator session", sessionID)
	}

	session, ok := ws.sessions[sessionID]
	if !ok {
		return SimulatorSession{}, notFound("simulator session", sessionID)
	}

	return *session, nil
}

// SetSessionPurpose replaces a session's purpose assignment.
func (s *Store) SetSessionPurpose(workspaceName, sessionID string, purpose SessionPurpose) (SimulatorSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws, ok := s.lookup(workspaceName)
	if !ok {
		return SimulatorSession{}, notFound("simulator session", sessionID)
	}

	session, ok := ws.sessions[sessionID]
	if !ok {
		return SimulatorSession{}, notFound("simulator session", sessionID)
	}

	session.SimulatorContext.Purpose = purpose

	return *session, nil
}

// cloneRecord returns a shallow copy of a record map. Nested values stay
// shared; callers treat returned records as read-only.
func cloneRecord(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for key, value := range record {
		out[key] = value
	}

	return out
}
