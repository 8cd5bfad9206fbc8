package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"tapestry/internal/models"

	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	NumUsers       int
	NumCommunities int
	NumThreads     int
	ShouldClean    bool
}

// Seeder populates the database with a connected social graph:
// users, communities with memberships, and threads with replies.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters: threads and memberships
// reference users and communities.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{"threads", "community_memberships", "communities", "users"}
	for _, table := range tables {
		if err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Run generates the full data set described by opts.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	log.Printf("Creating %d users...", opts.NumUsers)
	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return fmt.Errorf("cannot seed communities without users")
	}

	log.Printf("Creating %d communities...", opts.NumCommunities)
	communities := make([]*models.Community, 0, opts.NumCommunities)
	for i := 0; i < opts.NumCommunities; i++ {
		creator := users[s.rng.Intn(len(users))]
		community, err := s.factory.CreateCommunity(creator)
		if err != nil {
			return err
		}
		communities = append(communities, community)

		// each community gets a handful of members; the creator joins first
		if err := s.factory.AddMembership(community, creator, models.CommunityMembershipRoleModerator); err != nil {
			return err
		}
		memberCount := s.rng.Intn(len(users)/2 + 1)
		for j := 0; j < memberCount; j++ {
			member := users[s.rng.Intn(len(users))]
			if err := s.factory.AddMembership(community, member, models.CommunityMembershipRoleMember); err != nil {
				return err
			}
		}
	}

	log.Printf("Creating %d threads...", opts.NumThreads)
	for i := 0; i < opts.NumThreads; i++ {
		author := users[s.rng.Intn(len(users))]
		var community *models.Community
		if len(communities) > 0 && s.rng.Intn(3) > 0 {
			community = communities[s.rng.Intn(len(communities))]
		}
		thread, err := s.factory.CreateThread(author, community)
		if err != nil {
			return err
		}

		replyCount := s.rng.Intn(4)
		for j := 0; j < replyCount; j++ {
			replier := users[s.rng.Intn(len(users))]
			if _, err := s.factory.CreateReply(replier, thread); err != nil {
				return err
			}
		}
	}

	log.Println("Seeding complete.")
	return nil
}
