package models

// MaxTopStarsPerYear caps every exam-year list of the golden list.
const MaxTopStarsPerYear = 5

// HeroStat is a headline number on the landing page.
type HeroStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LiveSession is a scheduled live class.
type LiveSession struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Thumbnail       string `json:"thumbnail"`
	YoutubeID       string `json:"youtubeId"`
	ExamYear        string `json:"examYear"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// FreeVideo is a publicly listed lesson.
type FreeVideo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// TopStudent is one entry of a year's golden list.
type TopStudent struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Index string `json:"index"`
	Score string `json:"score"`
}

// ExamYearStars groups top students of one exam year.
type ExamYearStars struct {
	Year     string       `json:"year"`
	Students []TopStudent `json:"students"`
}

// SiteSettings is the singleton document at site/settings.
type SiteSettings struct {
	HeroBadge        string          `json:"heroBadge"`
	HeroTitle        string          `json:"heroTitle"`
	HeroSubtitle     string          `json:"heroSubtitle"`
	HeroTutorImage   string          `json:"heroTutorImage"`
	HeroStats        []HeroStat      `json:"heroStats"`
	LiveSessions     []LiveSession   `json:"liveSessions"`
	FreeVideos       []FreeVideo     `json:"freeVideos"`
	GalleryImages    []string        `json:"galleryImages"`
	ContactEmail     string          `json:"contactEmail"`
	ContactPhone     string          `json:"contactPhone"`
	BankDetails      string          `json:"bankDetails"`
	LogoURL          string          `json:"logoUrl"`
	BackgroundImages []string        `json:"backgroundImages"`
	TopStars         []ExamYearStars `json:"topStars"`
}

// DefaultSettings is served until an operator saves settings for the first time.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		HeroBadge:      "The best physics class in Srilanka",
		HeroTitle:      "Remember the goal and never give up",
		HeroSubtitle:   "Premium Physics coaching by Niroshan Jayathunge. Join the most elite educational community in the island.",
		HeroTutorImage: "https://images.unsplash.com/photo-1544717297-fa154daaf762?auto=format&fit=crop&q=80&w=400",
		HeroStats: []HeroStat{
			{Label: "Active Students", Value: "12k+"},
			{Label: "Island Ranks", Value: "250+"},
			{Label: "Experience", Value: "15+ Years"},
			{Label: "Courses", Value: "50+"},
		},
		LiveSessions: []LiveSession{},
		FreeVideos:   []FreeVideo{{ID: "dQw4w9WgXcQ", Title: "Introduction to Mechanics"}},
		GalleryImages: []string{
			"https://images.unsplash.com/photo-1532094349884-543bc11b234d?auto=format&fit=crop&q=80&w=800",
			"https://images.unsplash.com/photo-1509062522246-3755977927d7?auto=format&fit=crop&q=80&w=800",
			"https://images.unsplash.com/photo-1516534775068-ba3e84529519?auto=format&fit=crop&q=80&w=800",
		},
		ContactEmail:     "rasumotivation.contact@gmail.com",
		ContactPhone:     "071 019 5000",
		BankDetails:      "Bank: BOC, Branch: Colombo, A/C: 1234567890",
		BackgroundImages: []string{},
		TopStars: []ExamYearStars{
			{Year: "2026", Students: []TopStudent{}},
			{Year: "2027", Students: []TopStudent{}},
			{Year: "2028", Students: []TopStudent{}},
			{Year: "2029", Students: []TopStudent{}},
		},
	}
}

// StarsFor returns the group for year, or nil.
func (s *SiteSettings) StarsFor(year string) *ExamYearStars {
	for i := range s.TopStars {
		if s.TopStars[i].Year == year {
			return &s.TopStars[i]
		}
	}
	return nil
}

// AddTopStar appends a blank entry to year, creating the group when needed. A full list is left untouched and
// false is returned.
func (s *SiteSettings) AddTopStar(year string) bool {
	group := s.StarsFor(year)
	if group == nil {
		s.TopStars = append(s.TopStars, ExamYearStars{Year: year, Students: []TopStudent{}})
		group = &s.TopStars[len(s.TopStars)-1]
	}
	if len(group.Students) >= MaxTopStarsPerYear {
		return false
	}
	group.Students = append(group.Students, TopStudent{Rank: len(group.Students) + 1})
	return true
}

// RemoveTopStar drops the entry at position. Remaining ranks are kept as they were.
func (s *SiteSettings) RemoveTopStar(year string, position int) bool {
	group := s.StarsFor(year)
	if group == nil || position < 0 || position >= len(group.Students) {
		return false
	}
	group.Students = append(group.Students[:position], group.Students[position+1:]...)
	return true
}
