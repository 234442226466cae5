package services

import (
	"agency_site_go/config"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxStoredAlerts      = 100
)

// SecurityEventMonitor counts failed admin logins per IP and raises alerts
type SecurityEventMonitor struct {
	mu           sync.Mutex
	failedLogins map[string][]time.Time
	alertedIPs   map[string]time.Time
	alerts       []SecurityAlert
	notify       func(SecurityAlert)
	now          func() time.Time
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time
	IP        string
	Reason    string
	Level     string // "WARNING", "CRITICAL"
}

// Monitor is the process-wide instance used by the login handler
var Monitor *SecurityEventMonitor

// NewSecurityEventMonitor creates a monitor. notify may be nil.
func NewSecurityEventMonitor(notify func(SecurityAlert)) *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failedLogins: make(map[string][]time.Time),
		alertedIPs:   make(map[string]time.Time),
		notify:       notify,
		now:          time.Now,
	}
}

// InitSecurityMonitor sets up Monitor. Alerts are mailed to the admin address
// when one is configured.
func InitSecurityMonitor(cfg *config.Config) {
	var notify func(SecurityAlert)
	if cfg != nil && cfg.AdminNotifyEmail != "" {
		notify = func(alert SecurityAlert) {
			SendEmailAsync(cfg, &Email{
				To:       []string{cfg.AdminNotifyEmail},
				Subject:  fmt.Sprintf("Security Alert: %s", alert.Reason),
				TextBody: fmt.Sprintf("System detected a security event:\n\nType: %s\nIP Address: %s\nTime: %s\n\nPlease investigate.", alert.Reason, alert.IP, alert.Timestamp.Format(time.RFC1123)),
			})
		}
	}
	Monitor = NewSecurityEventMonitor(notify)
	go Monitor.cleanupLoop()
}

// TrackFailedLogin records a failed login attempt and checks for threshold
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.mu.Lock()
	now := m.now()
	windowStart := now.Add(-failedLoginWindow)

	valid := m.failedLogins[ip][:0]
	for _, t := range m.failedLogins[ip] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	valid = append(valid, now)
	m.failedLogins[ip] = valid

	var alert *SecurityAlert
	if len(valid) >= failedLoginThreshold {
		alert = m.triggerAlertLocked(ip, "Multiple failed logins detected", now)
	}
	m.mu.Unlock()

	if alert != nil && m.notify != nil {
		m.notify(*alert)
	}
}

// TrackSuccessfulLogin forgets earlier failures from ip
func (m *SecurityEventMonitor) TrackSuccessfulLogin(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failedLogins, ip)
}

// triggerAlertLocked stores an alert unless ip was alerted within the cooldown
func (m *SecurityEventMonitor) triggerAlertLocked(ip, reason string, now time.Time) *SecurityAlert {
	if lastAlert, alerted := m.alertedIPs[ip]; alerted && now.Sub(lastAlert) < alertCooldown {
		return nil
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{
		Timestamp: now,
		IP:        ip,
		Reason:    reason,
		Level:     "CRITICAL",
	}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxStoredAlerts {
		m.alerts = m.alerts[:maxStoredAlerts]
	}

	log.Printf("[SECURITY ALERT] %s from IP: %s", reason, ip)
	return &alert
}

// GetRecentAlerts returns a copy of recent alerts, newest first
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Cleanup drops failure windows and alert cooldowns that have expired
func (m *SecurityEventMonitor) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for ip, attempts := range m.failedLogins {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failedLogins, ip)
		}
	}
	for ip, lastAlert := range m.alertedIPs {
		if now.Sub(lastAlert) > alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}

func (m *SecurityEventMonitor) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		m.Cleanup()
	}
}
