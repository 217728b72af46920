package apify

import (
	"sort"
	"strings"

	"github.com/lumina/partnerdesk/internal/domain"
)

// rawRecord is one item of the actor's dataset. The actor emits author and
// post records in the same flat list; which fields are set tells them apart.
type rawRecord struct {
	// Author record fields
	Username       string `json:"username"`
	FullName       string `json:"fullName"`
	FollowersCount int64  `json:"followersCount"`

	// Post record fields
	OwnerUsername  string `json:"ownerUsername"`
	LikesCount     *int64 `json:"likesCount"`
	CommentsCount  *int64 `json:"commentsCount"`
	VideoViewCount *int64 `json:"videoViewCount"`
}

func (r rawRecord) isPost() bool {
	return r.OwnerUsername != "" || r.LikesCount != nil
}

type profileAccumulator struct {
	profile    domain.ScrapedProfile
	postCount  int64
	totalLikes int64
	totalComms int64
	totalViews int64
	viewPosts  int64
}

// normalize folds the mixed record list into one profile per author, with
// engagement derived from that author's post records.
func normalize(records []rawRecord, platform domain.SocialPlatform) []domain.ScrapedProfile {
	accs := make(map[string]*profileAccumulator)
	order := []string{}

	get := func(handle string) *profileAccumulator {
		key := strings.ToLower(strings.TrimPrefix(handle, "@"))
		if acc, ok := accs[key]; ok {
			return acc
		}
		acc := &profileAccumulator{profile: domain.ScrapedProfile{
			Handle:   "@" + key,
			Platform: platform,
		}}
		accs[key] = acc
		order = append(order, key)
		return acc
	}

	for _, r := range records {
		if r.isPost() {
			owner := r.OwnerUsername
			if owner == "" {
				owner = r.Username
			}
			if owner == "" {
				continue
			}
			acc := get(owner)
			acc.postCount++
			if r.LikesCount != nil {
				acc.totalLikes += *r.LikesCount
			}
			if r.CommentsCount != nil {
				acc.totalComms += *r.CommentsCount
			}
			if r.VideoViewCount != nil {
				acc.totalViews += *r.VideoViewCount
				acc.viewPosts++
			}
			continue
		}
		if r.Username == "" {
			continue
		}
		acc := get(r.Username)
		if r.FullName != "" {
			acc.profile.Name = r.FullName
		}
		if r.FollowersCount > 0 {
			acc.profile.Followers = r.FollowersCount
		}
	}

	var out []domain.ScrapedProfile
	for _, key := range order {
		acc := accs[key]
		p := acc.profile
		if p.Name == "" {
			p.Name = strings.TrimPrefix(p.Handle, "@")
		}
		if acc.viewPosts > 0 {
			p.AvgViews = acc.totalViews / acc.viewPosts
		}
		if acc.postCount > 0 && p.Followers > 0 {
			avgInteractions := float64(acc.totalLikes+acc.totalComms) / float64(acc.postCount)
			p.EngagementRate = avgInteractions / float64(p.Followers) * 100
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Followers > out[j].Followers })
	return out
}
