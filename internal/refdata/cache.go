package refdata

import (
	"context"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/courtline/recordlink/internal/docstore"
	"github.com/courtline/recordlink/internal/domain/player"
	"github.com/courtline/recordlink/internal/domain/season"
	"github.com/courtline/recordlink/internal/domain/team"
)

// Cache is a frozen snapshot of the three canonical reference collections,
// loaded once per run before any matching starts. Teams and seasons sit in
// keyed maps for O(1) lookup; players stay in a slice for the matcher's
// linear scan.
type Cache struct {
	teamsByAbbr map[string]team.Team
	seasonsByID map[int64]season.Season
	players     []player.Player
}

// Load reads all three collections from the store. The three reads run
// concurrently but Load only returns once every one has finished: this is
// the hard barrier between loading and matching. An unreachable store or an
// empty collection is an error; matching against partial reference data is
// never allowed.
func Load(ctx context.Context, store docstore.Store) (*Cache, error) {
	cache := &Cache{
		teamsByAbbr: make(map[string]team.Team),
		seasonsByID: make(map[int64]season.Season),
	}

	p := pool.New().WithErrors().WithContext(ctx)

	p.Go(func(ctx context.Context) error {
		docs, err := store.All(ctx, docstore.CollectionTeams)
		if err != nil {
			return crerr.Wrap(err, "load teams")
		}
		for _, doc := range docs {
			var t team.Team
			if err := sonic.Unmarshal(doc.Body, &t); err != nil {
				return crerr.Wrapf(err, "decode team document %s", doc.ID)
			}
			cache.teamsByAbbr[t.Abbreviation] = t
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		docs, err := store.All(ctx, docstore.CollectionSeasons)
		if err != nil {
			return crerr.Wrap(err, "load seasons")
		}
		for _, doc := range docs {
			var sn season.Season
			if err := sonic.Unmarshal(doc.Body, &sn); err != nil {
				return crerr.Wrapf(err, "decode season document %s", doc.ID)
			}
			cache.seasonsByID[sn.ID] = sn
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		docs, err := store.All(ctx, docstore.CollectionPlayers)
		if err != nil {
			return crerr.Wrap(err, "load players")
		}
		players := make([]player.Player, 0, len(docs))
		for _, doc := range docs {
			var pl player.Player
			if err := sonic.Unmarshal(doc.Body, &pl); err != nil {
				return crerr.Wrapf(err, "decode player document %s", doc.ID)
			}
			players = append(players, pl)
		}
		cache.players = players
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}

	if len(cache.teamsByAbbr) == 0 {
		return nil, crerr.Newf("reference collection %s is empty", docstore.CollectionTeams)
	}
	if len(cache.seasonsByID) == 0 {
		return nil, crerr.Newf("reference collection %s is empty", docstore.CollectionSeasons)
	}
	if len(cache.players) == 0 {
		return nil, crerr.Newf("reference collection %s is empty", docstore.CollectionPlayers)
	}

	return cache, nil
}

func (c *Cache) TeamByAbbreviation(abbr string) (team.Team, bool) {
	t, ok := c.teamsByAbbr[abbr]
	return t, ok
}

func (c *Cache) SeasonByID(id int64) (season.Season, bool) {
	s, ok := c.seasonsByID[id]
	return s, ok
}

// Players returns a copy of the roster snapshot, so callers cannot mutate
// the cache through it.
func (c *Cache) Players() []player.Player {
	return append([]player.Player(nil), c.players...)
}

func (c *Cache) TeamCount() int   { return len(c.teamsByAbbr) }
func (c *Cache) SeasonCount() int { return len(c.seasonsByID) }
func (c *Cache) PlayerCount() int { return len(c.players) }
