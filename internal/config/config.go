// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	AdminEmail              string `yaml:"admin_email"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitConnection        `yaml:"rabbit_connection"`
	SMTPConnection          `yaml:"smtp_connection"`
	PromoCodes              []PromoCode      `yaml:"promo_codes"`
	Plans                   []PlanPrice      `yaml:"plans"`
	PaymentChannels         []PaymentChannel `yaml:"payment_channels"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// RabbitConnection структура для настройки подключения к RabbitMQ
type RabbitConnection struct {
	RabbitURL        string        `yaml:"rabbit_url"`
	RabbitRetries    int           `yaml:"retries"`
	RabbitRetryDelay time.Duration `yaml:"retry_delay"`
}

// SMTPConnection структура для настройки SMTP-транспорта уведомлений
type SMTPConnection struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// PromoCode запись таблицы промокодов: код и выдаваемый по нему
// пробный доступ. Таблица задается конфигом, чтобы промо-кампании
// менялись без изменения кода.
type PromoCode struct {
	Code      string `yaml:"code"`
	Tier      string `yaml:"tier"`
	TrialDays int    `yaml:"trial_days"`
}

// PlanPrice цены тарифа в целых франках CFA.
type PlanPrice struct {
	Tier    string `yaml:"tier"`
	Monthly int    `yaml:"monthly"`
	Yearly  int    `yaml:"yearly"`
}

// PaymentChannel платежный канал и номер получателя.
type PaymentChannel struct {
	Name        string `yaml:"name"`
	PhoneNumber string `yaml:"phone_number"`
}

// MustLoad функция для загрузки конфига, путь к файлу берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// FindPromo ищет промокод в таблице без учета регистра.
func (c *Config) FindPromo(code string) (PromoCode, bool) {
	for _, p := range c.PromoCodes {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return PromoCode{}, false
}

// PriceFor возвращает цену тарифа за период. Второе значение false,
// если тариф не продается.
func (c *Config) PriceFor(tier, period string) (int, bool) {
	for _, p := range c.Plans {
		if p.Tier != tier {
			continue
		}
		if period == "yearly" {
			return p.Yearly, true
		}
		return p.Monthly, true
	}
	return 0, false
}

// ChannelNumber возвращает номер получателя для платежного канала.
func (c *Config) ChannelNumber(name string) (string, bool) {
	for _, ch := range c.PaymentChannels {
		if ch.Name == name {
			return ch.PhoneNumber, true
		}
	}
	return "", false
}
