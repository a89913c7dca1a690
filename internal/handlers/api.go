package handlers

import (
	"github.com/galaxytools/craft-tracker/internal/catalog"
	"github.com/galaxytools/craft-tracker/internal/mailstore"
	"github.com/galaxytools/craft-tracker/internal/ratelimit"
	"github.com/galaxytools/craft-tracker/internal/sales"
	"github.com/galaxytools/craft-tracker/internal/soapcache"
	"github.com/galaxytools/craft-tracker/internal/upstream"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// API holds the dependencies shared by every route handler.
type API struct {
	db        *gorm.DB
	log       *logrus.Entry
	validate  *validator.Validate
	upstream  *upstream.Client
	syncer    *catalog.Syncer
	cache     *soapcache.Cache
	scheduler *soapcache.Scheduler
	limiter   *ratelimit.Limiter
	importer  *sales.Importer
	mails     mailstore.Store
}

func NewAPI(
	logger *logrus.Logger,
	db *gorm.DB,
	upstreamClient *upstream.Client,
	syncer *catalog.Syncer,
	cache *soapcache.Cache,
	scheduler *soapcache.Scheduler,
	limiter *ratelimit.Limiter,
	importer *sales.Importer,
	mails mailstore.Store,
) *API {
	return &API{
		db:        db,
		log:       logger.WithField("component", "api"),
		validate:  validator.New(),
		upstream:  upstreamClient,
		syncer:    syncer,
		cache:     cache,
		scheduler: scheduler,
		limiter:   limiter,
		importer:  importer,
		mails:     mails,
	}
}
