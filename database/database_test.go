package database

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/rpupo63/portfolio-content-backend/errs"
	"github.com/rpupo63/portfolio-content-backend/models"
)

func newTestDatabase(t *testing.T) Database {
	t.Helper()

	gormDB, err := OpenSQLite(SQLiteOptions{
		Path:         filepath.Join(t.TempDir(), "portfolio.db"),
		Logger:       logger.Discard,
		BusyTimeout:  10 * time.Second,
		MaxOpenConns: 4,
	})
	require.NoError(t, err)

	d := New(gormDB)
	require.NoError(t, d.Migrate())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func boolPtr(b bool) *bool { return &b }

func seedTechnologies(t *testing.T, d Database, category string, names ...string) []models.Technology {
	t.Helper()
	ctx := context.Background()

	cat := &models.TechCategory{Name: category}
	require.NoError(t, d.TechCategoryRepo().Add(ctx, cat))

	techs := make([]models.Technology, 0, len(names))
	for _, name := range names {
		tech := &models.Technology{Name: name, CategoryID: cat.ID, Proficiency: 4}
		require.NoError(t, d.TechnologyRepo().Add(ctx, tech))
		techs = append(techs, *tech)
	}
	return techs
}

func addProject(t *testing.T, d Database, title string, published bool, techIDs ...uuid.UUID) *models.Project {
	t.Helper()
	p := &models.Project{Title: title, Tagline: title + " tagline", IsPublished: published}
	require.NoError(t, d.ProjectRepo().Add(context.Background(), p, techIDs))
	return p
}

func addPost(t *testing.T, d Database, title string, published bool, category models.BlogCategory, content string) *models.BlogPost {
	t.Helper()
	post := &models.BlogPost{
		Title:       title,
		Excerpt:     title + " excerpt",
		Content:     content,
		Category:    category,
		IsPublished: published,
	}
	require.NoError(t, d.BlogPostRepo().Add(context.Background(), post))
	return post
}

func TestSQLitePragmasEnabled(t *testing.T) {
	d := newTestDatabase(t)

	var fk int
	require.NoError(t, d.db.Raw("PRAGMA foreign_keys;").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
	assert.NoError(t, d.Ping(context.Background()))
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(SQLiteOptions{})
	assert.Error(t, err)
}

func TestUnpublishedProjectsAreHidden(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	addProject(t, d, "Live", true)
	draft := addProject(t, d, "Draft", false)

	page, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Live", page.Results[0].Title)
	assert.EqualValues(t, 1, page.Count)

	_, err = d.ProjectRepo().ViewBySlug(ctx, draft.Slug)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))

	all, err := d.ProjectRepo().ListAll(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Count)
}

func TestProjectSlugs(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	first := addProject(t, d, "Retrieval Augmented Search", true)
	second := addProject(t, d, "Retrieval Augmented Search", true)
	third := addProject(t, d, "Retrieval Augmented Search", true)
	assert.Equal(t, "retrieval-augmented-search", first.Slug)
	assert.Equal(t, "retrieval-augmented-search-2", second.Slug)
	assert.Equal(t, "retrieval-augmented-search-3", third.Slug)

	explicit := &models.Project{Title: "Anything", Slug: "hand-picked"}
	require.NoError(t, d.ProjectRepo().Add(ctx, explicit, nil))
	assert.Equal(t, "hand-picked", explicit.Slug)

	clash := &models.Project{Title: "Other", Slug: "hand-picked"}
	err := d.ProjectRepo().Add(ctx, clash, nil)
	require.Error(t, err)
	assert.True(t, errs.IsUniquenessViolation(err))

	punctuation := addProject(t, d, "!!!", true)
	assert.Equal(t, "project", punctuation.Slug)
}

func TestProjectUpdateKeepsSlugAndViews(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	p := addProject(t, d, "Original Title", true)
	_, err := d.ProjectRepo().ViewBySlug(ctx, p.Slug)
	require.NoError(t, err)

	p.Title = "Renamed Title"
	p.Slug = "renamed-title"
	p.Views = 0
	require.NoError(t, d.ProjectRepo().Update(ctx, p, nil))

	stored, err := d.ProjectRepo().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Title", stored.Title)
	assert.Equal(t, "original-title", stored.Slug)
	assert.EqualValues(t, 1, stored.Views)
}

func TestProjectTechFilterIsDistinctAndCaseInsensitive(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	techs := seedTechnologies(t, d, "Languages", "Python", "MicroPython", "Go")
	both := addProject(t, d, "Snake Charmer", true, techs[0].ID, techs[1].ID)
	addProject(t, d, "Gopher", true, techs[2].ID)
	addProject(t, d, "Hidden Python", false, techs[0].ID)

	page, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Tech: "PYTHON", Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, both.ID, page.Results[0].ID)
	assert.Len(t, page.Results[0].Technologies, 2)

	none, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Tech: "rust", Page: 1})
	require.NoError(t, err)
	assert.Empty(t, none.Results)
	assert.NotNil(t, none.Results)
}

func TestProjectListingOrderAndFilters(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	low := &models.Project{Title: "Low", Priority: 1, IsPublished: true}
	high := &models.Project{Title: "High", Priority: 9, IsPublished: true, IsFeatured: true}
	mid := &models.Project{Title: "Mid 100% done", Priority: 5, IsPublished: true, IsFeatured: true}
	for _, p := range []*models.Project{low, high, mid} {
		require.NoError(t, d.ProjectRepo().Add(ctx, p, nil))
	}

	page, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Results, 3)
	assert.Equal(t, []string{"High", "Mid 100% done", "Low"}, []string{page.Results[0].Title, page.Results[1].Title, page.Results[2].Title})

	featured, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Featured: boolPtr(true), Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, featured.Count)

	notFeatured, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Featured: boolPtr(false), Page: 1})
	require.NoError(t, err)
	require.Len(t, notFeatured.Results, 1)
	assert.Equal(t, "Low", notFeatured.Results[0].Title)

	literalPercent, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Search: "100%", Page: 1})
	require.NoError(t, err)
	require.Len(t, literalPercent.Results, 1)
	assert.Equal(t, "Mid 100% done", literalPercent.Results[0].Title)

	wildcard, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Search: "%", Page: 1})
	require.NoError(t, err)
	assert.Len(t, wildcard.Results, 1)
}

func TestFeaturedProjectsAreCapped(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p := &models.Project{Title: fmt.Sprintf("Featured %d", i), Priority: i, IsPublished: true, IsFeatured: true}
		require.NoError(t, d.ProjectRepo().Add(ctx, p, nil))
	}
	draft := &models.Project{Title: "Featured draft", Priority: 100, IsFeatured: true}
	require.NoError(t, d.ProjectRepo().Add(ctx, draft, nil))

	featured, err := d.ProjectRepo().Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, FeaturedProjectsLimit)
	assert.Equal(t, "Featured 4", featured[0].Title)
}

func TestPagination(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	for i := 0; i < PageSize+5; i++ {
		addProject(t, d, fmt.Sprintf("Project %02d", i), true)
	}

	first, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 1})
	require.NoError(t, err)
	assert.Len(t, first.Results, PageSize)
	assert.EqualValues(t, PageSize+5, first.Count)
	assert.Equal(t, PageSize, first.PageSize)

	second, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Results, 5)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(first.Results, second.Results...) {
		assert.False(t, seen[p.ID], "duplicate across pages")
		seen[p.ID] = true
	}

	beyond, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 3})
	require.NoError(t, err)
	assert.Empty(t, beyond.Results)

	huge, err := d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: math.MaxInt/PageSize + 2})
	require.NoError(t, err)
	assert.Empty(t, huge.Results)
	assert.EqualValues(t, PageSize+5, huge.Count)

	_, err = d.ProjectRepo().ListPublished(ctx, ProjectFilter{Page: 0})
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))
}

func TestProjectDetailUpsertAndCascade(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	p := addProject(t, d, "Case Study", true)

	viewed, err := d.ProjectRepo().ViewBySlug(ctx, p.Slug)
	require.NoError(t, err)
	assert.Nil(t, viewed.Detail)

	detail := &models.ProjectDetail{
		ProblemStatement: "slow search",
		KeyFeatures:      []string{"hybrid retrieval"},
		PerformanceMetrics: []models.PerformanceMetric{
			{Metric: "p95 latency", Improvement: "-40%"},
		},
	}
	require.NoError(t, d.ProjectRepo().UpsertDetail(ctx, p.ID, detail))
	firstID := detail.ID

	replacement := &models.ProjectDetail{ProblemStatement: "slower search"}
	require.NoError(t, d.ProjectRepo().UpsertDetail(ctx, p.ID, replacement))
	assert.Equal(t, firstID, replacement.ID)

	viewed, err = d.ProjectRepo().ViewBySlug(ctx, p.Slug)
	require.NoError(t, err)
	require.NotNil(t, viewed.Detail)
	assert.Equal(t, "slower search", viewed.Detail.ProblemStatement)
	assert.Empty(t, viewed.Detail.KeyFeatures)
	assert.EqualValues(t, 2, viewed.Views)

	err = d.ProjectRepo().UpsertDetail(ctx, uuid.New(), &models.ProjectDetail{})
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, d.ProjectRepo().Delete(ctx, p.ID))
	var details int64
	require.NoError(t, d.db.Model(&models.ProjectDetail{}).Count(&details).Error)
	assert.Zero(t, details)

	err = d.ProjectRepo().Delete(ctx, p.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestConcurrentViewsAreNotLost(t *testing.T) {
	d := newTestDatabase(t)
	post := addPost(t, d, "Popular", true, models.CategoryTechnical, "content")

	const readers = 25
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < readers; i++ {
		g.Go(func() error {
			_, err := d.BlogPostRepo().ViewBySlug(ctx, post.Slug)
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := d.BlogPostRepo().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, readers, stored.Views)
}

func TestBlogPostDerivedFieldsAndFilters(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	post := addPost(t, d, "Scaling Agents", true, models.CategoryAITrends, strings.Repeat("token ", 300))
	addPost(t, d, "Draft Post", false, models.CategoryAITrends, "secret")
	addPost(t, d, "Go Tutorial", true, models.CategoryTutorial, "channels and goroutines")

	assert.Equal(t, 2, post.ReadingTime)
	assert.Equal(t, "Scaling Agents excerpt", post.MetaDescription)

	post.Content = strings.Repeat("token ", 1000)
	require.NoError(t, d.BlogPostRepo().Update(ctx, post))
	stored, err := d.BlogPostRepo().FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.ReadingTime)
	assert.Equal(t, "scaling-agents", stored.Slug)

	byCategory, err := d.BlogPostRepo().ListPublished(ctx, BlogPostFilter{Category: "ai-trends", Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, byCategory.Count)

	unknown, err := d.BlogPostRepo().ListPublished(ctx, BlogPostFilter{Category: "gossip", Page: 1})
	require.NoError(t, err)
	assert.Empty(t, unknown.Results)

	search, err := d.BlogPostRepo().ListPublished(ctx, BlogPostFilter{Search: "GOROUTINES", Page: 1})
	require.NoError(t, err)
	require.Len(t, search.Results, 1)
	assert.Equal(t, "Go Tutorial", search.Results[0].Title)

	hidden, err := d.BlogPostRepo().ListPublished(ctx, BlogPostFilter{Search: "secret", Page: 1})
	require.NoError(t, err)
	assert.Empty(t, hidden.Results)

	counts, err := d.BlogPostRepo().CategoryCounts(ctx)
	require.NoError(t, err)
	require.Len(t, counts, len(models.BlogCategories))
	got := map[models.BlogCategory]int64{}
	for _, c := range counts {
		got[c.Category] = c.Count
	}
	assert.EqualValues(t, 1, got[models.CategoryAITrends])
	assert.EqualValues(t, 1, got[models.CategoryTutorial])
	assert.EqualValues(t, 0, got[models.CategoryOpinion])

	recent, err := d.BlogPostRepo().Recent(ctx)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	_, err = d.BlogPostRepo().ViewBySlug(ctx, "draft-post")
	assert.True(t, errs.IsNotFound(err))

	total, err := d.BlogPostRepo().TotalViews(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRecentPostsOrderedByPublishedDate(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		post := &models.BlogPost{
			Title:         fmt.Sprintf("Post %d", i),
			Excerpt:       "e",
			Content:       "c",
			IsPublished:   true,
			PublishedDate: base.AddDate(0, 0, i),
		}
		require.NoError(t, d.BlogPostRepo().Add(ctx, post))
	}

	recent, err := d.BlogPostRepo().Recent(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentPostsLimit)
	assert.Equal(t, "Post 3", recent[0].Title)
	assert.Equal(t, "Post 1", recent[2].Title)
}

func TestSiteConfigurationSingleton(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	repo := d.SiteConfigurationRepo()

	def, err := repo.GetOrDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSiteConfiguration().Name, def.Name)

	cfg := models.DefaultSiteConfiguration()
	cfg.Name = "Configured"
	require.NoError(t, repo.Create(ctx, &cfg))

	second := models.DefaultSiteConfiguration()
	err = repo.Create(ctx, &second)
	require.Error(t, err)
	assert.True(t, errs.IsSingletonViolation(err))

	err = repo.Delete(ctx)
	assert.True(t, errs.IsOperationNotPermitted(err))

	err = d.db.Delete(&cfg).Error
	require.Error(t, err)
	assert.True(t, errs.IsOperationNotPermitted(err))

	var rows int64
	require.NoError(t, d.db.Model(&models.SiteConfiguration{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	update := models.DefaultSiteConfiguration()
	update.Name = "Renamed"
	update.YearsExperience = 4
	require.NoError(t, repo.Update(ctx, &update))

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, 4, stored.YearsExperience)
	assert.Equal(t, cfg.ID, stored.ID)
}

func TestSiteConfigurationUpdateWithoutRow(t *testing.T) {
	d := newTestDatabase(t)
	cfg := models.DefaultSiteConfiguration()

	err := d.SiteConfigurationRepo().Update(context.Background(), &cfg)
	assert.True(t, errs.IsNotFound(err))
}

func TestTechCategoryDeleteCascades(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	techs := seedTechnologies(t, d, "Cloud", "AWS Lambda", "DynamoDB")
	kept := seedTechnologies(t, d, "Languages", "Go")

	project := addProject(t, d, "Serverless", true, techs[0].ID, techs[1].ID, kept[0].ID)
	highlight := &models.CareerHighlight{Title: "Engineer", Organization: "Acme", DateRange: "2023 - Present"}
	require.NoError(t, d.CareerHighlightRepo().Add(ctx, highlight, []uuid.UUID{techs[0].ID}))

	categories, err := d.TechCategoryRepo().FindAll(ctx)
	require.NoError(t, err)
	var cloudID uuid.UUID
	for _, c := range categories {
		if c.Name == "Cloud" {
			cloudID = c.ID
		}
	}

	removed, err := d.TechCategoryRepo().Delete(ctx, cloudID)
	require.NoError(t, err)
	assert.Equal(t, []string{"AWS Lambda", "DynamoDB"}, removed)

	remaining, err := d.TechnologyRepo().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Go", remaining[0].Name)

	stored, err := d.ProjectRepo().FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored.Technologies, 1)
	assert.Equal(t, "Go", stored.Technologies[0].Name)

	storedHighlight, err := d.CareerHighlightRepo().FindByID(ctx, highlight.ID)
	require.NoError(t, err)
	assert.Empty(t, storedHighlight.Technologies)

	_, err = d.TechCategoryRepo().Delete(ctx, cloudID)
	assert.True(t, errs.IsNotFound(err))
}

func TestTechStackOmitsEmptyCategories(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	seedTechnologies(t, d, "Data", "Postgres", "Kafka")
	require.NoError(t, d.TechCategoryRepo().Add(ctx, &models.TechCategory{Name: "Empty"}))

	stack, err := d.TechCategoryRepo().TechStack(ctx)
	require.NoError(t, err)
	require.Len(t, stack, 1)
	assert.Equal(t, "Data", stack[0].Name)
	assert.Equal(t, "Kafka", stack[0].Technologies[0].Name)

	dup := d.TechCategoryRepo().Add(ctx, &models.TechCategory{Name: "Data"})
	assert.True(t, errs.IsUniquenessViolation(dup))
}

func TestTechnologyValidationAndReferences(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()

	err := d.TechnologyRepo().Add(ctx, &models.Technology{Name: "Orphan", CategoryID: uuid.New()})
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))

	err = d.ProjectRepo().Add(ctx, &models.Project{Title: "Bad refs"}, []uuid.UUID{uuid.New()})
	assert.True(t, errs.IsValidationError(err))

	techs := seedTechnologies(t, d, "Languages", "Go")
	assert.Equal(t, models.DefaultTechnologyColor, techs[0].Color)
}

func TestCareerHighlightOrdering(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	repo := d.CareerHighlightRepo()

	for _, h := range []*models.CareerHighlight{
		{Title: "Intern", Organization: "A", DateRange: "2019", Order: 1},
		{Title: "Lead", Organization: "B", DateRange: "2024 - Present", IsCurrent: true},
		{Title: "Engineer", Organization: "C", DateRange: "2021 - 2023", Order: 5},
	} {
		require.NoError(t, repo.Add(ctx, h, nil))
	}

	highlights, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, highlights, 3)
	assert.Equal(t, "Lead", highlights[0].Title)
	assert.Equal(t, "Engineer", highlights[1].Title)
	assert.Equal(t, "Intern", highlights[2].Title)
	assert.NotNil(t, highlights[0].Metrics)
}

func TestContactSubmissionFlags(t *testing.T) {
	d := newTestDatabase(t)
	ctx := context.Background()
	repo := d.ContactSubmissionRepo()

	sub := &models.ContactSubmission{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello"}
	require.NoError(t, repo.Add(ctx, sub))

	updated, err := repo.SetFlags(ctx, sub.ID, ContactFlags{IsRead: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsRead)
	assert.False(t, updated.Replied)

	unread, err := repo.List(ctx, 1, true)
	require.NoError(t, err)
	assert.Empty(t, unread.Results)

	_, err = repo.SetFlags(ctx, uuid.New(), ContactFlags{Replied: boolPtr(true)})
	assert.True(t, errs.IsNotFound(err))

	_, err = repo.SetFlags(ctx, sub.ID, ContactFlags{})
	assert.True(t, errs.IsValidationError(err))
}
