package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"blog-planner-go/internal/model"
	"blog-planner-go/pkg/tasks"

	"gorm.io/gorm"
)

type memConversationRepo struct {
	mu         sync.Mutex
	current    map[uint]string
	histories  map[string][]model.Message
	responding map[string]string
	leaseTTLs  []time.Duration
	leaseSeq   int
	seq        int
	failGet    error
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		current:    map[uint]string{},
		histories:  map[string][]model.Message{},
		responding: map[string]string{},
	}
}

func (r *memConversationRepo) GetOrCreateConversationID(_ context.Context, userID uint) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.current[userID]; ok {
		return id, nil
	}
	return r.assign(userID), nil
}

func (r *memConversationRepo) assign(userID uint) string {
	r.seq++
	id := fmt.Sprintf("conv-%d-%d", userID, r.seq)
	r.current[userID] = id
	return id
}

func (r *memConversationRepo) GetConversationHistory(_ context.Context, id string) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	return append([]model.Message{}, r.histories[id]...), nil
}

func (r *memConversationRepo) UpdateConversationHistory(_ context.Context, id string, messages []model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[id] = append([]model.Message{}, messages...)
	return nil
}

func (r *memConversationRepo) ResetConversation(_ context.Context, userID uint) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.histories, r.current[userID])
	return r.assign(userID), nil
}

func (r *memConversationRepo) TryMarkResponding(_ context.Context, id string, ttl time.Duration) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaseTTLs = append(r.leaseTTLs, ttl)
	if _, held := r.responding[id]; held {
		return "", false, nil
	}
	r.leaseSeq++
	token := fmt.Sprintf("lease-%d", r.leaseSeq)
	r.responding[id] = token
	return token, true, nil
}

func (r *memConversationRepo) ClearResponding(_ context.Context, id, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.responding[id] == token {
		delete(r.responding, id)
	}
	return nil
}

// expireLease 模拟标记过期：直接丢弃当前持有者。
func (r *memConversationRepo) expireLease(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.responding, id)
}

func (r *memConversationRepo) IsResponding(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, held := r.responding[id]
	return held, nil
}

func (r *memConversationRepo) GetAllUserConversationMappings(_ context.Context) (map[uint]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uint]string, len(r.current))
	for k, v := range r.current {
		out[k] = v
	}
	return out, nil
}

type memUserRepo struct {
	users []*model.User
}

func (r *memUserRepo) Create(user *model.User) error {
	user.ID = uint(len(r.users) + 1)
	user.CreatedAt = time.Now()
	r.users = append(r.users, user)
	return nil
}

func (r *memUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByID(id uint) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindAll() ([]model.User, error) {
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

type memBlacklist struct {
	tokens map[string]time.Duration
}

func (b *memBlacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	if b.tokens == nil {
		b.tokens = map[string]time.Duration{}
	}
	b.tokens[token] = ttl
	return nil
}

func (b *memBlacklist) Contains(_ context.Context, token string) (bool, error) {
	_, ok := b.tokens[token]
	return ok, nil
}

type memExportRepo struct {
	records map[uint]*model.ExportRecord
	next    uint
}

func newMemExportRepo() *memExportRepo {
	return &memExportRepo{records: map[uint]*model.ExportRecord{}}
}

func (r *memExportRepo) Create(record *model.ExportRecord) error {
	r.next++
	record.ID = r.next
	r.records[record.ID] = record
	return nil
}

func (r *memExportRepo) FindByID(id uint) (*model.ExportRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memExportRepo) FindByUser(userID uint) ([]model.ExportRecord, error) {
	var out []model.ExportRecord
	for id := uint(1); id <= r.next; id++ {
		if rec, ok := r.records[id]; ok && rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *memExportRepo) MarkCompleted(id uint, objectName string) error {
	rec, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	rec.Status = model.ExportCompleted
	rec.ObjectName = objectName
	rec.CompletedAt = &now
	return nil
}

func (r *memExportRepo) MarkFailed(id uint, reason string) error {
	rec, ok := r.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rec.Status = model.ExportFailed
	rec.Error = reason
	return nil
}

type recordingPublisher struct {
	tasks []tasks.PlanExportTask
	err   error
}

func (p *recordingPublisher) PublishExportTask(_ context.Context, task tasks.PlanExportTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

type stubSigner struct{}

func (stubSigner) PresignedURL(_ context.Context, objectName, fileName string, _ time.Duration) (string, error) {
	return "https://files.local/" + objectName + "?as=" + fileName, nil
}

// scriptedResponder 返回固定回复，block 非空时等待其关闭后才返回。
type scriptedResponder struct {
	reply     string
	block     chan struct{}
	started   chan struct{}
	inputs    []int
	deadlines []time.Time
}

func (s *scriptedResponder) Respond(ctx context.Context, _ string, transcript []model.Message) (string, error) {
	s.inputs = append(s.inputs, len(transcript))
	if d, ok := ctx.Deadline(); ok {
		s.deadlines = append(s.deadlines, d)
	}
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, nil
}

var errBoom = errors.New("boom")
