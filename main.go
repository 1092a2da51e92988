package main

import (
	"time"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/routes"
	"github.com/yatube/yatube/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.PageView{},
		&models.ImageFile{},
	)

	var listingCache cache.Cache
	if rc := utils.GetRedis(); rc != nil {
		listingCache = cache.NewRedis(rc, "cache:index:")
	} else {
		utils.Sugar.Warn("redis unavailable, listing cache runs in-process")
		listingCache = cache.NewMemory()
	}
	r := routes.SetupRouter(db, listingCache)

	// Background removal of image files whose post is gone (best-effort)
	utils.StartImageCleaner(db, 10*time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
