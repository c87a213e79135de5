package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-service/internal/api/dto"
	"github.com/spec-kit/school-service/internal/service"
)

// DashboardHandler serves the fixed role-gated dashboards.
type DashboardHandler struct{}

// NewDashboardHandler constructs handler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

type dashboard struct {
	Message  string   `json:"message"`
	Features []string `json:"features"`
}

type studentCourse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Teacher  string `json:"teacher"`
	Progress int    `json:"progress"`
}

type studentAssignment struct {
	ID      int    `json:"id"`
	Course  string `json:"course"`
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
	Status  string `json:"status"`
}

type studentSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// StudentDashboard handles GET /api/student/dashboard.
func (h *DashboardHandler) StudentDashboard(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgAccessGranted, dashboard{
		Message:  "Добро пожаловать в панель ученика",
		Features: []string{"Просмотр курсов", "Выполнение заданий", "Просмотр оценок"},
	}))
}

// StudentCourses handles GET /api/student/courses.
func (h *DashboardHandler) StudentCourses(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgCoursesLoaded, []studentCourse{
		{ID: 1, Name: "Математика", Teacher: "Петров А.А.", Progress: 75},
		{ID: 2, Name: "Физика", Teacher: "Сидоров И.И.", Progress: 45},
	}))
}

// StudentAssignments handles GET /api/student/assignments.
func (h *DashboardHandler) StudentAssignments(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgAssignmentsLoaded, []studentAssignment{
		{ID: 1, Course: "Математика", Title: "Решение уравнений", DueDate: "2024-01-15", Status: "В процессе"},
		{ID: 2, Course: "Физика", Title: "Лабораторная работа", DueDate: "2024-01-20", Status: "Завершено"},
	}))
}

// TeacherDashboard handles GET /api/admin/dashboard.
func (h *DashboardHandler) TeacherDashboard(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgAccessGranted, dashboard{
		Message:  "Добро пожаловать в панель управления преподавателя",
		Features: []string{"Управление курсами", "Просмотр учеников", "Создание заданий"},
	}))
}

// Students handles GET /api/admin/students.
func (h *DashboardHandler) Students(c *fiber.Ctx) error {
	return c.JSON(dto.OK(service.MsgStudentsLoaded, []studentSummary{
		{ID: 1, Name: "Иван Иванов", Email: "ivan@example.com"},
		{ID: 2, Name: "Мария Петрова", Email: "maria@example.com"},
	}))
}
