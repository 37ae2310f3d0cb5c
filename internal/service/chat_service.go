package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-jobagent-be/internal/dto"
	"ai-jobagent-be/internal/entity"
	"ai-jobagent-be/internal/pkg/logger"
	"ai-jobagent-be/internal/repository/specification"
	"ai-jobagent-be/internal/repository/unitofwork"
	"ai-jobagent-be/pkg/agent"
	"ai-jobagent-be/pkg/agent/orchestrator"
	"ai-jobagent-be/pkg/agent/session"
	"ai-jobagent-be/pkg/agent/stream"
	"ai-jobagent-be/pkg/events"
	"ai-jobagent-be/pkg/extract"
	"ai-jobagent-be/pkg/nats"

	"github.com/google/uuid"
)

const defaultSessionTitle = "New job search"

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)

	Chat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest) (*dto.ChatResponse, error)
	StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, emit stream.EmitFunc) (stream.State, error)
	Confirm(ctx context.Context, userId uuid.UUID, req *dto.ConfirmRequest, emit stream.EmitFunc) (stream.State, error)
	GetDetails(ctx context.Context, userId uuid.UUID, req *dto.GetDetailsRequest, emit stream.EmitFunc) (stream.State, error)
	GetStatus(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionStatusResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	registry   *session.Registry
	controller *stream.Controller
	approvals  stream.ApprovalStore
	publisher  *nats.Publisher
	log        logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	registry *session.Registry,
	controller *stream.Controller,
	approvals stream.ApprovalStore,
	publisher *nats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		registry:   registry,
		controller: controller,
		approvals:  approvals,
		publisher:  publisher,
		log:        log,
	}
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultSessionTitle
	}

	sess := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		ThreadId:  uuid.NewString(),
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, sess); err != nil {
		return nil, err
	}
	return &dto.CreateSessionResponse{Id: sess.Id, ThreadId: sess.ThreadId}, nil
}

func (s *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, sess := range sessions {
		responses = append(responses, &dto.GetAllSessionsResponse{
			Id:        sess.Id,
			Title:     sess.Title,
			ThreadId:  sess.ThreadId,
			CreatedAt: sess.CreatedAt,
			UpdatedAt: sess.UpdatedAt,
		})
	}
	return responses, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	sess, err := s.findOwnedSession(ctx, userId, sessionId)
	if err != nil {
		return err
	}
	s.registry.Drop(sess.ThreadId)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ChatSessionRepository().Delete(ctx, sessionId)
}

func (s *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	if _, err := s.findOwnedSession(ctx, userId, sessionId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.GetChatHistoryResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, &dto.GetChatHistoryResponse{
			Id:          m.Id,
			Role:        m.Role,
			Chat:        m.Chat,
			MessageType: string(m.MessageType),
			ExtraData:   m.ExtraData,
			CreatedAt:   m.CreatedAt,
		})
	}
	return responses, nil
}

// Chat runs one turn synchronously, collapsing the event stream into
// a single response for clients that do not consume SSE.
func (s *chatService) Chat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest) (*dto.ChatResponse, error) {
	events, state, err := stream.Collect(func(emit stream.EmitFunc) (stream.State, error) {
		return s.StreamChat(ctx, userId, req, emit)
	})
	if err != nil {
		return nil, err
	}

	res := &dto.ChatResponse{State: string(state)}
	for _, ev := range events {
		switch ev.Type {
		case stream.TypeText:
			res.Content = ev.Content
			res.Data = ev.Data
		case stream.TypeConfirmation:
			res.PendingTools = ev.Tools
			res.Label = ev.Label
		}
	}
	return res, nil
}

// StreamChat runs one agent turn for the session, persisting both
// sides of the exchange as events flow to the client.
func (s *chatService) StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, emit stream.EmitFunc) (stream.State, error) {
	sess, err := s.findOwnedSession(ctx, userId, req.ChatSessionId)
	if err != nil {
		return stream.StateFailed, err
	}

	chat := strings.TrimSpace(req.Chat)
	content := chat
	if cv := strings.TrimSpace(req.CvText); cv != "" {
		content = fmt.Sprintf("%s\n\nHere is my CV:\n%s", chat, orchestrator.TrimCV(cv, 0))
	}

	s.persistMessage(ctx, sess.Id, agent.RoleUser, chat, entity.MessageTypeText, nil)
	s.maybeRetitle(ctx, sess, chat)

	h, err := s.registry.GetOrCreate(sess.ThreadId)
	if err != nil {
		return stream.StateFailed, err
	}

	opts := stream.Options{Policy: stream.ApproveNone}
	rec := s.recordingEmit(ctx, sess, emit, opts)
	state, err := s.controller.Run(ctx, h, []agent.Message{{Role: agent.RoleUser, Content: content}}, rec.emit, opts)
	s.afterSegment(ctx, userId, sess, state, rec)
	return state, err
}

// Confirm resolves the session's pending approval and drives the run
// onward.
func (s *chatService) Confirm(ctx context.Context, userId uuid.UUID, req *dto.ConfirmRequest, emit stream.EmitFunc) (stream.State, error) {
	sess, err := s.findOwnedSession(ctx, userId, req.ChatSessionId)
	if err != nil {
		return stream.StateFailed, err
	}

	h, err := s.registry.GetOrCreate(sess.ThreadId)
	if err != nil {
		return stream.StateFailed, err
	}

	opts := stream.Options{Policy: stream.ApproveNone}
	rec := s.recordingEmit(ctx, sess, emit, opts)
	state, err := s.controller.Resume(ctx, h, agent.Decision{Approved: req.Approved, Note: req.Note}, rec.emit, opts)
	s.afterSegment(ctx, userId, sess, state, rec)
	return state, err
}

// GetDetails asks the agent to scrape the selected listings. The user
// already chose these URLs, so tool interrupts are auto-approved and
// output classification expects detail records.
func (s *chatService) GetDetails(ctx context.Context, userId uuid.UUID, req *dto.GetDetailsRequest, emit stream.EmitFunc) (stream.State, error) {
	sess, err := s.findOwnedSession(ctx, userId, req.ChatSessionId)
	if err != nil {
		return stream.StateFailed, err
	}

	var b strings.Builder
	b.WriteString("Get full details for these jobs:\n")
	for _, u := range req.URLs {
		b.WriteString("- ")
		b.WriteString(u)
		b.WriteString("\n")
	}
	content := b.String()

	s.persistMessage(ctx, sess.Id, agent.RoleUser, content, entity.MessageTypeText, nil)

	h, err := s.registry.GetOrCreate(sess.ThreadId)
	if err != nil {
		return stream.StateFailed, err
	}

	opts := stream.Options{Policy: stream.ApproveRun, DetailPhase: true}
	rec := s.recordingEmit(ctx, sess, emit, opts)
	state, err := s.controller.Run(ctx, h, []agent.Message{{Role: agent.RoleUser, Content: content}}, rec.emit, opts)
	s.afterSegment(ctx, userId, sess, state, rec)
	return state, err
}

func (s *chatService) GetStatus(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) (*dto.SessionStatusResponse, error) {
	sess, err := s.findOwnedSession(ctx, userId, sessionId)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionStatusResponse{ChatSessionId: sessionId}
	interrupt, err := s.pendingInterrupt(ctx, sess.ThreadId)
	if err != nil {
		return nil, err
	}
	if interrupt == nil {
		return resp, nil
	}
	resp.Suspended = true
	resp.Label = stream.CallLabel(interrupt.ToolCalls)
	for _, tc := range interrupt.ToolCalls {
		resp.PendingTools = append(resp.PendingTools, tc.Name)
	}
	return resp, nil
}

// pendingInterrupt checks the approval store first and falls back to
// the runtime's durable snapshot, which outlives a process restart.
func (s *chatService) pendingInterrupt(ctx context.Context, threadId string) (*agent.InterruptInfo, error) {
	pending, err := s.approvals.Peek(threadId)
	if err == nil {
		return &pending.Interrupt, nil
	}
	if !errors.Is(err, stream.ErrNoPendingApproval) {
		return nil, err
	}
	h, err := s.registry.GetOrCreate(threadId)
	if err != nil {
		return nil, err
	}
	snap, err := h.Runtime.State(ctx, threadId)
	if err != nil {
		return nil, err
	}
	if !snap.Suspended() {
		return nil, nil
	}
	return snap.Interrupt, nil
}

func (s *chatService) findOwnedSession(ctx context.Context, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, errors.New("chat session not found")
	}
	return sess, nil
}

// maybeRetitle names a fresh session after its first message.
func (s *chatService) maybeRetitle(ctx context.Context, sess *entity.ChatSession, chat string) {
	if sess.Title != defaultSessionTitle || chat == "" {
		return
	}
	title := chat
	if len(title) > 80 {
		title = title[:80]
	}
	sess.Title = title
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, sess); err != nil {
		s.log.Warn("chat_service", "failed to retitle session", map[string]interface{}{
			"chat_session_id": sess.Id.String(),
			"error":           err.Error(),
		})
	}
}

// segmentRecorder wraps the client emit, persisting agent output and
// tallying structured results for post-segment events.
type segmentRecorder struct {
	emit      stream.EmitFunc
	jobsFound int
}

func (s *chatService) recordingEmit(ctx context.Context, sess *entity.ChatSession, emit stream.EmitFunc, opts stream.Options) *segmentRecorder {
	rec := &segmentRecorder{}
	rec.emit = func(ev stream.Event) error {
		switch ev.Type {
		case stream.TypeText:
			msgType, extra := classifyPayload(ev, opts.DetailPhase)
			if cls, ok := ev.Data.(extract.Classification); ok {
				rec.jobsFound += len(cls.Jobs)
			}
			s.persistMessage(ctx, sess.Id, agent.RoleAssistant, ev.Content, msgType, extra)
		case stream.TypeConfirmation:
			extra, _ := json.Marshal(map[string]interface{}{
				"label": ev.Label,
				"tools": ev.Tools,
			})
			s.persistMessage(ctx, sess.Id, agent.RoleAssistant, ev.Message, entity.MessageTypeConfirmation, extra)
		}
		return emit(ev)
	}
	return rec
}

// afterSegment publishes lifecycle events once a run segment reaches a
// terminal state. Publish failures never fail the run.
func (s *chatService) afterSegment(ctx context.Context, userId uuid.UUID, sess *entity.ChatSession, state stream.State, rec *segmentRecorder) {
	if s.publisher == nil {
		return
	}
	var evs []events.Event
	switch state {
	case stream.StateCompleted:
		evs = append(evs, events.NewRunCompleted(userId.String(), sess.ThreadId, string(state)))
		if rec.jobsFound > 0 {
			evs = append(evs, events.NewJobsFound(userId.String(), sess.ThreadId, rec.jobsFound))
		}
	case stream.StateInterrupted:
		var tools []string
		if pending, err := s.approvals.Peek(sess.ThreadId); err == nil {
			for _, tc := range pending.Interrupt.ToolCalls {
				tools = append(tools, tc.Name)
			}
		}
		evs = append(evs, events.NewApprovalRequested(userId.String(), sess.ThreadId, tools))
	}
	for _, ev := range evs {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.log.Warn("chat_service", "failed to publish agent event", map[string]interface{}{
				"thread_id": sess.ThreadId,
				"error":     err.Error(),
			})
		}
	}
}

func (s *chatService) persistMessage(ctx context.Context, sessionId uuid.UUID, role agent.Role, content string, msgType entity.MessageType, extra json.RawMessage) {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          content,
		Role:          string(role),
		MessageType:   msgType,
		ExtraData:     extra,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, msg); err != nil {
		s.log.Error("chat_service", "failed to persist chat message", map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"role":            role,
			"error":           err.Error(),
		})
	}
}

// classifyPayload maps a classified text event onto the message type
// and structured payload stored with it.
func classifyPayload(ev stream.Event, detailPhase bool) (entity.MessageType, json.RawMessage) {
	cls, ok := ev.Data.(extract.Classification)
	if !ok || cls.Kind == extract.KindText {
		return entity.MessageTypeText, nil
	}
	extra, err := json.Marshal(cls)
	if err != nil {
		return entity.MessageTypeText, nil
	}
	switch cls.Kind {
	case extract.KindProfile:
		return entity.MessageTypeProfile, extra
	case extract.KindJobSelection:
		return entity.MessageTypeJobs, extra
	case extract.KindJobs:
		if detailPhase {
			return entity.MessageTypeJobDetails, extra
		}
		return entity.MessageTypeJobs, extra
	default:
		return entity.MessageTypeText, extra
	}
}
