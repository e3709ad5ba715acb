package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nruangsri/BEPromote/config"
	"github.com/nruangsri/BEPromote/database"
	"github.com/nruangsri/BEPromote/routes"
)

func main() {
	// .env เป็น optional — ใน container ใช้ env ตรง ๆ
	_ = godotenv.Load()

	cfg := config.Load()

	// เชื่อมต่อฐานข้อมูล (DB ไม่ขึ้น = จบโปรแกรมทันที)
	database.Connect(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
