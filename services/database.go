package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"mdp-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB 인스턴스
var db *gorm.DB

// ErrDatabaseDisabled - MySQL 설정이 없어 감사 로그를 저장하지 않는 상태
var ErrDatabaseDisabled = errors.New("database disabled")

// InitDatabase - 환경 변수로 MySQL 연결. MYSQL_HOST가 없으면 DB 없이 동작한다.
func InitDatabase() error {
	host := os.Getenv("MYSQL_HOST")
	if host == "" {
		log.Println("⚠️ MYSQL_HOST 미설정: 계획 로그를 DB에 저장하지 않습니다")
		return nil
	}

	portStr := os.Getenv("MYSQL_PORT")
	user := os.Getenv("MYSQL_USER")
	password := os.Getenv("MYSQL_PASSWORD")
	dbname := os.Getenv("MYSQL_DATABASE")

	if user == "" || dbname == "" {
		return fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_USER, MYSQL_DATABASE")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		port = 3306 // 기본 포트
	}

	// DSN 구성
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("DB 연결 실패: %w", err)
	}
	if err := UseDatabase(conn); err != nil {
		return err
	}

	log.Println("✅ MySQL 연결 및 마이그레이션 완료")
	log.Printf("📡 연결 정보: %s@%s:%d/%s", user, host, port, dbname)
	return nil
}

// UseDatabase - 이미 열린 연결을 사용하고 테이블을 마이그레이션한다
func UseDatabase(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.PlanLog{}); err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}
	db = conn
	return nil
}

// GetDB - GORM 인스턴스 반환 (DB 미사용 시 nil)
func GetDB() *gorm.DB {
	return db
}

// GetRecentPlanLogs - 최근 계획 로그 조회
func GetRecentPlanLogs(limit int) ([]models.PlanLog, error) {
	if db == nil {
		return nil, ErrDatabaseDisabled
	}
	var logs []models.PlanLog
	err := db.Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// GetPlanLog - plan_id로 로그 조회
func GetPlanLog(planID string) (*models.PlanLog, error) {
	if db == nil {
		return nil, ErrDatabaseDisabled
	}
	var entry models.PlanLog
	if err := db.Where("plan_id = ?", planID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
