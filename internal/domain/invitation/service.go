package invitation

import (
	"context"
	"fmt"
	"log"
	"time"

	"nahio/backend/internal/schema"
)

// Repo is the store port for invitations.
type Repo interface {
	SendUnique(ctx context.Context, inv Invitation) (*Invitation, error)
	FindOpen(ctx context.Context, senderID, recipientID, athleteID string) (string, error)
	Get(ctx context.Context, id string) (*Invitation, error)
	Transition(ctx context.Context, id, to string) error
	Delete(ctx context.Context, id string) error
	ListByParty(ctx context.Context, field, id string) ([]Invitation, error)
	ListUnread(ctx context.Context, recipientID string) ([]Invitation, error)
	Profiles(ctx context.Context, role schema.Role, ids []string) (map[string]PartySnapshot, error)
	AthleteNames(ctx context.Context, ids []string) (map[string]string, error)
	ListParties(ctx context.Context, role schema.Role, nameField string) ([]PartyListing, error)
}

// Notifier lets invitation events fan out to the notifications
// collection.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, notifType string) error
}

type Service struct {
	repo     Repo
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// SetNotifier wires the notifications service; nil keeps events silent.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send creates an invitation with status "sent". An unresolved
// invitation for the same (sender, recipient, athlete) triple blocks a
// second one.
func (s *Service) Send(ctx context.Context, in SendInput) (*Invitation, error) {
	in.Trim()
	if in.SenderID == "" || in.RecipientID == "" {
		return nil, fmt.Errorf("%w: senderId and recipientId are required", ErrBadRequest)
	}
	if in.SenderID == in.RecipientID {
		return nil, fmt.Errorf("%w: cannot invite yourself", ErrBadRequest)
	}
	if !partyRole(in.SenderRole) || !partyRole(in.RecipientRole) {
		return nil, fmt.Errorf("%w: invitations connect scouts and institutions", ErrBadRequest)
	}

	now := s.now()
	inv := Invitation{
		SenderID:      in.SenderID,
		RecipientID:   in.RecipientID,
		SenderRole:    in.SenderRole,
		RecipientRole: in.RecipientRole,
		AthleteID:     in.AthleteID,
		Message:       in.Message,
		Status:        schema.InvitationSent,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	out, err := s.repo.SendUnique(ctx, inv)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, out.RecipientID, "New invitation", "You received a new invitation.")
	return out, nil
}

// CheckExisting reports whether an unresolved invitation already exists
// for the triple, and its id when it does.
func (s *Service) CheckExisting(ctx context.Context, senderID, recipientID, athleteID string) (bool, string, error) {
	if senderID == "" || recipientID == "" {
		return false, "", fmt.Errorf("%w: senderId and recipientId are required", ErrBadRequest)
	}
	id, err := s.repo.FindOpen(ctx, senderID, recipientID, athleteID)
	if err != nil {
		return false, "", err
	}
	return id != "", id, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*Invitation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	joined, err := s.join(ctx, []Invitation{*inv}, true, true)
	if err != nil {
		return nil, err
	}
	return &joined[0], nil
}

// ListBySender attaches recipient and athlete snapshots.
func (s *Service) ListBySender(ctx context.Context, senderID string) ([]Invitation, error) {
	if senderID == "" {
		return nil, fmt.Errorf("%w: senderId is required", ErrBadRequest)
	}
	out, err := s.repo.ListByParty(ctx, "senderId", senderID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, out, false, true)
}

// ListByRecipient attaches sender and athlete snapshots.
func (s *Service) ListByRecipient(ctx context.Context, recipientID string) ([]Invitation, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipientId is required", ErrBadRequest)
	}
	out, err := s.repo.ListByParty(ctx, "recipientId", recipientID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, out, true, false)
}

// ListUnread lists unresolved invitations for a recipient, with sender
// snapshots for the badge UI.
func (s *Service) ListUnread(ctx context.Context, recipientID string) ([]Invitation, error) {
	if recipientID == "" {
		return nil, fmt.Errorf("%w: recipientId is required", ErrBadRequest)
	}
	out, err := s.repo.ListUnread(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, out, true, false)
}

// Accept resolves the invitation; only the recipient may accept.
func (s *Service) Accept(ctx context.Context, id, actorUID string) error {
	return s.resolve(ctx, id, actorUID, schema.InvitationAccepted, "Invitation accepted", "Your invitation was accepted.")
}

// Decline resolves the invitation; only the recipient may decline.
func (s *Service) Decline(ctx context.Context, id, actorUID string) error {
	return s.resolve(ctx, id, actorUID, schema.InvitationDeclined, "Invitation declined", "Your invitation was declined.")
}

func (s *Service) resolve(ctx context.Context, id, actorUID, to, title, message string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if actorUID != inv.RecipientID {
		return fmt.Errorf("%w: only the recipient can resolve an invitation", ErrUnauthorized)
	}

	if err := s.repo.Transition(ctx, id, to); err != nil {
		return err
	}
	s.notify(ctx, inv.SenderID, title, message)
	return nil
}

// Delete removes an invitation; only the sender may retract it.
func (s *Service) Delete(ctx context.Context, id, actorUID string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrBadRequest)
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if actorUID != inv.SenderID {
		return fmt.Errorf("%w: only the sender can delete an invitation", ErrUnauthorized)
	}
	return s.repo.Delete(ctx, id)
}

// Stats aggregates both directions of a user's invitations.
func (s *Service) Stats(ctx context.Context, userID string) (*StatsSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrBadRequest)
	}

	sent, err := s.repo.ListByParty(ctx, "senderId", userID)
	if err != nil {
		return nil, err
	}
	received, err := s.repo.ListByParty(ctx, "recipientId", userID)
	if err != nil {
		return nil, err
	}

	stats := &StatsSummary{}
	count(&stats.Sent, sent)
	count(&stats.Received, received)
	return stats, nil
}

func count(side *StatsSide, invs []Invitation) {
	for _, inv := range invs {
		side.Total++
		switch inv.Status {
		case schema.InvitationAccepted:
			side.Accepted++
		case schema.InvitationDeclined:
			side.Declined++
		case schema.InvitationSent:
			side.Pending++
		}
	}
}

func (s *Service) ListEligibleInstitutions(ctx context.Context) ([]PartyListing, error) {
	return s.repo.ListParties(ctx, schema.RoleInstitution, "schoolName")
}

func (s *Service) ListEligibleScouts(ctx context.Context) ([]PartyListing, error) {
	return s.repo.ListParties(ctx, schema.RoleScout, "name")
}

// join attaches denormalized snapshots. Each distinct role is one batch
// fetch; a reference whose document no longer exists is left out rather
// than failing the list.
func (s *Service) join(ctx context.Context, invs []Invitation, wantSender, wantRecipient bool) ([]Invitation, error) {
	if len(invs) == 0 {
		return invs, nil
	}

	byRole := map[schema.Role][]string{}
	athleteIDs := []string{}
	for _, inv := range invs {
		if wantSender {
			byRole[inv.SenderRole] = append(byRole[inv.SenderRole], inv.SenderID)
		}
		if wantRecipient {
			byRole[inv.RecipientRole] = append(byRole[inv.RecipientRole], inv.RecipientID)
		}
		if inv.AthleteID != "" {
			athleteIDs = append(athleteIDs, inv.AthleteID)
		}
	}

	snaps := map[schema.Role]map[string]PartySnapshot{}
	for role, ids := range byRole {
		m, err := s.repo.Profiles(ctx, role, ids)
		if err != nil {
			return nil, err
		}
		snaps[role] = m
	}

	names := map[string]string{}
	if len(athleteIDs) > 0 {
		var err error
		names, err = s.repo.AthleteNames(ctx, athleteIDs)
		if err != nil {
			return nil, err
		}
	}

	for i := range invs {
		if wantSender {
			if snap, ok := snaps[invs[i].SenderRole][invs[i].SenderID]; ok {
				invs[i].Sender = &snap
			}
		}
		if wantRecipient {
			if snap, ok := snaps[invs[i].RecipientRole][invs[i].RecipientID]; ok {
				invs[i].Recipient = &snap
			}
		}
		if name, ok := names[invs[i].AthleteID]; ok {
			invs[i].AthleteName = name
		}
	}
	return invs, nil
}

func (s *Service) notify(ctx context.Context, userID, title, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, title, message, schema.NotifInvitation); err != nil {
		log.Printf("warn: failed to write invitation notification for %s: %v", userID, err)
	}
}
