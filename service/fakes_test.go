package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/mock"

	"ridebook/pkg/mailer"
	"ridebook/pkg/models"
	"ridebook/storage"
)

// memStore is an in-memory storage.IStorage with failure injection.
type memStore struct {
	mu sync.Mutex

	contacts      map[string]*models.ContactRequest
	identities    map[string]*models.Identity
	passwords     map[string]string
	roles         map[string]models.Role
	drivers       map[string]*models.Driver
	customers     map[string]*models.Customer
	rides         map[string]*models.Ride
	notifications []*models.Notification

	failContactUpdate  error
	failIdentityCreate error
	failIdentityDelete error
	failDriverCreate   error
	failCustomerCreate error
	failRoleSet        error
	failNotification   error

	identityCreates int
	identityDeletes int
	profileCreates  int
	roleSets        int
	rideUpdates     int
	lastScope       storage.RideScope

	seq int
}

func newMemStore() *memStore {
	return &memStore{
		contacts:   map[string]*models.ContactRequest{},
		identities: map[string]*models.Identity{},
		passwords:  map[string]string{},
		roles:      map[string]models.Role{},
		drivers:    map[string]*models.Driver{},
		customers:  map[string]*models.Customer{},
		rides:      map[string]*models.Ride{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identityCreates + m.identityDeletes + m.profileCreates + m.roleSets
}

func (m *memStore) ContactRequest() storage.IContactRequestStorage { return memContacts{m} }
func (m *memStore) Identity() storage.IIdentityStorage             { return memIdentities{m} }
func (m *memStore) Role() storage.IRoleStorage                     { return memRoles{m} }
func (m *memStore) Driver() storage.IDriverStorage                 { return memDrivers{m} }
func (m *memStore) Customer() storage.ICustomerStorage             { return memCustomers{m} }
func (m *memStore) Ride() storage.IRideStorage                     { return memRides{m} }
func (m *memStore) Notification() storage.INotificationStorage     { return memNotifications{m} }
func (m *memStore) SchemaVersion(context.Context) (uint, error)    { return 2, nil }
func (m *memStore) Close()                                         {}
func (m *memStore) GetPool() *pgxpool.Pool                         { return nil }

// seed helpers

func (m *memStore) addContact(c models.ContactRequest) *models.ContactRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = m.nextID("req")
	}
	if c.Status == "" {
		c.Status = models.ContactPending
	}
	m.contacts[c.ID] = &c
	return &c
}

func (m *memStore) addIdentity(email string, role models.Role) *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := &models.Identity{ID: m.nextID("usr"), Email: email, Metadata: models.IdentityMetadata{Role: role}}
	m.identities[i.ID] = i
	return i
}

func (m *memStore) addDriver(userID string) *models.Driver {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &models.Driver{ID: m.nextID("drv"), UserID: userID, Name: "Driver " + userID}
	m.drivers[d.ID] = d
	return d
}

func (m *memStore) addCustomer(userID string) *models.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := &models.Customer{ID: m.nextID("cus"), UserID: userID, Name: "Customer " + userID}
	m.customers[c.ID] = c
	return c
}

func (m *memStore) addRide(r models.Ride) *models.Ride {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == "" {
		r.ID = m.nextID("ride")
	}
	m.rides[r.ID] = &r
	return &r
}

type memContacts struct{ m *memStore }

func (s memContacts) Create(_ context.Context, req *models.ContactRequest) (*models.ContactRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c := *req
	c.ID = s.m.nextID("req")
	c.Status = models.ContactPending
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.m.contacts[c.ID] = &c
	out := c
	return &out, nil
}

func (s memContacts) GetByID(_ context.Context, id string) (*models.ContactRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.contacts[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s memContacts) GetAll(_ context.Context, status models.ContactStatus) ([]*models.ContactRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var list []*models.ContactRequest
	for _, c := range s.m.contacts {
		if status == "" || c.Status == status {
			out := *c
			list = append(list, &out)
		}
	}
	return list, nil
}

func (s memContacts) UpdateStatus(_ context.Context, id string, status models.ContactStatus, notes string) (*models.ContactRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failContactUpdate != nil {
		return nil, s.m.failContactUpdate
	}
	c, ok := s.m.contacts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c.Status = status
	c.AdminNotes = notes
	c.UpdatedAt = time.Now()
	out := *c
	return &out, nil
}

type memIdentities struct{ m *memStore }

func (s memIdentities) Create(_ context.Context, email, password string, md models.IdentityMetadata) (*models.Identity, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failIdentityCreate != nil {
		return nil, s.m.failIdentityCreate
	}
	for _, i := range s.m.identities {
		if i.Email == email {
			return nil, storage.ErrDuplicate
		}
	}
	now := time.Now()
	i := &models.Identity{ID: s.m.nextID("usr"), Email: email, Metadata: md, EmailConfirmedAt: &now, CreatedAt: now}
	s.m.identities[i.ID] = i
	s.m.passwords[i.ID] = password
	s.m.identityCreates++
	out := *i
	return &out, nil
}

func (s memIdentities) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failIdentityDelete != nil {
		return s.m.failIdentityDelete
	}
	if _, ok := s.m.identities[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.m.identities, id)
	delete(s.m.passwords, id)
	s.m.identityDeletes++
	return nil
}

func (s memIdentities) GetByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, i := range s.m.identities {
		if i.Email == email {
			out := *i
			return &out, nil
		}
	}
	return nil, nil
}

func (s memIdentities) GetByID(_ context.Context, id string) (*models.Identity, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	i, ok := s.m.identities[id]
	if !ok {
		return nil, nil
	}
	out := *i
	return &out, nil
}

func (s memIdentities) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	i, _ := s.GetByEmail(ctx, email)
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if i == nil || s.m.passwords[i.ID] != password {
		return nil, storage.ErrInvalidCredentials
	}
	return i, nil
}

type memRoles struct{ m *memStore }

func (s memRoles) Set(_ context.Context, userID string, role models.Role) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.roleSets++
	if s.m.failRoleSet != nil {
		return s.m.failRoleSet
	}
	s.m.roles[userID] = role
	return nil
}

func (s memRoles) Get(_ context.Context, userID string) (models.Role, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return s.m.roles[userID], nil
}

type memDrivers struct{ m *memStore }

func (s memDrivers) Create(_ context.Context, d *models.Driver) (*models.Driver, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failDriverCreate != nil {
		return nil, s.m.failDriverCreate
	}
	out := *d
	out.ID = s.m.nextID("drv")
	s.m.drivers[out.ID] = &out
	s.m.profileCreates++
	cp := out
	return &cp, nil
}

func (s memDrivers) GetByID(_ context.Context, id string) (*models.Driver, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	d, ok := s.m.drivers[id]
	if !ok {
		return nil, nil
	}
	out := *d
	return &out, nil
}

func (s memDrivers) GetByUserID(_ context.Context, userID string) (*models.Driver, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, d := range s.m.drivers {
		if d.UserID == userID {
			out := *d
			return &out, nil
		}
	}
	return nil, nil
}

func (s memDrivers) GetAll(context.Context) ([]*models.Driver, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var list []*models.Driver
	for _, d := range s.m.drivers {
		out := *d
		list = append(list, &out)
	}
	return list, nil
}

type memCustomers struct{ m *memStore }

func (s memCustomers) Create(_ context.Context, c *models.Customer) (*models.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failCustomerCreate != nil {
		return nil, s.m.failCustomerCreate
	}
	out := *c
	out.ID = s.m.nextID("cus")
	s.m.customers[out.ID] = &out
	s.m.profileCreates++
	cp := out
	return &cp, nil
}

func (s memCustomers) GetByID(_ context.Context, id string) (*models.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.customers[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (s memCustomers) GetByUserID(_ context.Context, userID string) (*models.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, c := range s.m.customers {
		if c.UserID == userID {
			out := *c
			return &out, nil
		}
	}
	return nil, nil
}

func (s memCustomers) GetAll(context.Context) ([]*models.Customer, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var list []*models.Customer
	for _, c := range s.m.customers {
		out := *c
		list = append(list, &out)
	}
	return list, nil
}

type memRides struct{ m *memStore }

// withParties must be called with the lock held.
func (s memRides) withParties(r *models.Ride) *models.Ride {
	out := *r
	if c, ok := s.m.customers[r.CustomerID]; ok {
		out.Customer = &models.PartySummary{ID: c.ID, UserID: c.UserID, Name: c.Name}
	}
	out.Driver = nil
	if r.DriverID != nil {
		if d, ok := s.m.drivers[*r.DriverID]; ok {
			out.Driver = &models.PartySummary{ID: d.ID, UserID: d.UserID, Name: d.Name}
		}
	}
	return &out
}

func (s memRides) Create(_ context.Context, r *models.Ride) (*models.Ride, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := *r
	out.ID = s.m.nextID("ride")
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	s.m.rides[out.ID] = &out
	return s.withParties(&out), nil
}

func (s memRides) GetByID(_ context.Context, id string) (*models.Ride, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.rides[id]
	if !ok {
		return nil, nil
	}
	return s.withParties(r), nil
}

func (s memRides) GetAll(_ context.Context, f models.RideFilter) ([]*models.Ride, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var list []*models.Ride
	for _, r := range s.m.rides {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.CustomerID != "" && r.CustomerID != f.CustomerID {
			continue
		}
		if f.DriverID != "" && !r.AssignedTo(f.DriverID) {
			continue
		}
		list = append(list, s.withParties(r))
	}
	return list, nil
}

func (s memRides) Update(_ context.Context, id string, scope storage.RideScope, patch models.RidePatch) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.lastScope = scope
	r, ok := s.m.rides[id]
	if !ok {
		return storage.ErrNotFound
	}
	if scope.CustomerID != "" && r.CustomerID != scope.CustomerID {
		return storage.ErrNotFound
	}
	if scope.DriverID != "" && !r.AssignedTo(scope.DriverID) {
		return storage.ErrNotFound
	}
	patch.Apply(r)
	r.UpdatedAt = time.Now()
	s.m.rideUpdates++
	return nil
}

type memNotifications struct{ m *memStore }

func (s memNotifications) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.failNotification != nil {
		return nil, s.m.failNotification
	}
	out := *n
	out.ID = s.m.nextID("ntf")
	out.CreatedAt = time.Now()
	s.m.notifications = append(s.m.notifications, &out)
	cp := out
	return &cp, nil
}

func (s memNotifications) GetByUser(_ context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var list []*models.Notification
	for _, n := range s.m.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out := *n
			list = append(list, &out)
		}
	}
	return list, nil
}

func (s memNotifications) MarkRead(_ context.Context, userID, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, n := range s.m.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return storage.ErrNotFound
}

type memSessions struct {
	mu   sync.Mutex
	jtis map[string]string
}

func newMemSessions() *memSessions { return &memSessions{jtis: map[string]string{}} }

func (s *memSessions) Save(_ context.Context, userID, jti string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jtis[userID] = jti
	return nil
}

func (s *memSessions) Active(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jtis[userID], nil
}

func (s *memSessions) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jtis, userID)
	return nil
}

func (s *memSessions) Close() error { return nil }

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendCredentials(ctx context.Context, to, name, password, role string) mailer.Result {
	args := m.Called(ctx, to, name, password, role)
	return args.Get(0).(mailer.Result)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
}
